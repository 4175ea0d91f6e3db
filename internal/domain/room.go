package domain

import "time"

type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Capacity  int32     `json:"capacity"`
	IsLab     bool      `json:"isLab"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
