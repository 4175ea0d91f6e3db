package domain

type SlotType string

const (
	SlotTypeLecture SlotType = "lecture"
	SlotTypeLab     SlotType = "lab" // 实验时段固定占两节课，作为一个原子时段存储
	SlotTypeBreak   SlotType = "break"
	SlotTypeProject SlotType = "project"
)

type TimeSlot struct {
	ID         int64    `json:"id"`
	DayOfWeek  int32    `json:"dayOfWeek"` // 1-7
	SlotNumber int32    `json:"slotNumber"`
	StartTime  string   `json:"startTime"` // 格式为 15:04:05
	EndTime    string   `json:"endTime"`
	IsMorning  bool     `json:"isMorning"` // 是否在午休之前
	Type       SlotType `json:"type"`
}
