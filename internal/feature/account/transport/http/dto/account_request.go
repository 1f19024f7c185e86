// Package dto はaccountフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
//
// 必須項目や許可値の検証はユースケース側で行うため、binding タグは付けません。
// 省略可能な項目はポインタで受け取り、未指定と空値を区別します。
package dto

// RegisterReq は/registerエンドポイントのリクエストボディを表します。
type RegisterReq struct {
	Username  string  `json:"username"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Location  *string `json:"location"`
	Role      *string `json:"role"`
	IsActive  *int    `json:"isActive"`
}

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileReq は/update/profileエンドポイントのリクエストボディを表します。
// 指定された項目のみが更新されます。
type UpdateProfileReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Location  *string `json:"location"`
}

// UpdateStatusReq は/profile/update/statusエンドポイントのリクエストボディを表します。
// isActive は整数の0または1のみ受け付け、真偽値や文字列はデコード時点で拒否されます。
type UpdateStatusReq struct {
	IsActive *int `json:"isActive"`
}

// UpdateRoleReq は/update/roleエンドポイントのリクエストボディを表します。
// AccountID を省略した場合は呼び出し元自身のロールを変更します。
type UpdateRoleReq struct {
	NewRole   string `json:"newRole"`
	AccountID string `json:"accountId"`
}
