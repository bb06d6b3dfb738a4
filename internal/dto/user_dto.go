package dto

type RegisterRequest struct {
	Username   *string `json:"username"`
	TelegramID *int64  `json:"telegram_id"`
}

type RegisterResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type UserResult struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type SearchResponse struct {
	Results []UserResult `json:"results"`
}

type PubKeyUpdateRequest struct {
	PubKey *string `json:"pubkey"`
}

type PubKeyResponse struct {
	PubKey string `json:"pubkey"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
