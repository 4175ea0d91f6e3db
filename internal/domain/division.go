package domain

import "time"

type Division struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Year       int32     `json:"year"`
	BatchCount int32     `json:"batchCount"` // 用于实验轮换的小组数量
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}
