package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// DailyRotation is the single row recording the current daily quest slots:
// which calendar day they were drawn on, under which preset, and the three
// quest IDs occupying the slots.
type DailyRotation struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	SelectedOn string         `json:"selected_on"` // YYYY-MM-DD, empty forces reselection
	Preset     string         `json:"preset"`
	SlotIDs    datatypes.JSON `json:"slot_ids"` // [id, id, id]
}

// Slots decodes the daily slot quest IDs.
func (r *DailyRotation) Slots() []int64 {
	if len(r.SlotIDs) == 0 {
		return nil
	}
	var ids []int64
	_ = json.Unmarshal(r.SlotIDs, &ids)
	return ids
}

// SetSlots encodes the daily slot quest IDs.
func (r *DailyRotation) SetSlots(ids []int64) {
	b, _ := json.Marshal(ids)
	r.SlotIDs = datatypes.JSON(b)
}
