package models

import "time"

// Settings единственная запись настроек сайта.
type Settings struct {
	IsWaitingListMode bool      `json:"isWaitingListMode"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// WaitingListEntry заявка, оставленная в режиме листа ожидания.
type WaitingListEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
