package dto

import "time"

type CreateMessageRequest struct {
	To         *uint   `json:"to"`
	IV         *string `json:"iv"`
	Ciphertext *string `json:"ciphertext"`
	MsgType    *string `json:"msg_type"`
	TTLSec     *int    `json:"ttl_sec"`
}

type CreateMessageResponse struct {
	OK bool `json:"ok"`
	ID uint `json:"id"`
}

type MessageResponse struct {
	ID         uint      `json:"id"`
	FromID     uint      `json:"from_id"`
	ToID       uint      `json:"to_id"`
	IV         string    `json:"iv"`
	Ciphertext string    `json:"ciphertext"`
	MsgType    string    `json:"msg_type"`
	TTLSec     *int      `json:"ttl_sec"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}
