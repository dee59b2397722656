package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// The business day is a fixed grid of one-hour slots, 08:00 through 16:00
// inclusive start times. Sub-hour bookings are rejected everywhere.
const (
	SlotFirstHour = 8
	SlotLastHour  = 16
)

var slotTimePattern = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)

// AllSlots returns the nine canonical HH:00:00 slot strings in ascending order.
func AllSlots() []string {
	slots := make([]string, 0, SlotLastHour-SlotFirstHour+1)
	for h := SlotFirstHour; h <= SlotLastHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00:00", h))
	}
	return slots
}

// IsValidSlotTime reports whether the value names one of the fixed hour slots.
// Accepted forms are HH:MM and HH:MM:SS with two-digit fields; the hour must
// fall inside the business window and minutes/seconds must be zero.
func IsValidSlotTime(value string) bool {
	m := slotTimePattern.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	return hour >= SlotFirstHour && hour <= SlotLastHour && minute == 0 && second == 0
}

// SlotHour extracts the hour component of a stored slot time. It assumes the
// value already passed IsValidSlotTime or came from the appointments table.
func SlotHour(value string) int {
	m := slotTimePattern.FindStringSubmatch(value)
	if m == nil {
		return -1
	}
	hour, _ := strconv.Atoi(m[1])
	return hour
}

// IsValidCalendarDate reports whether the value parses as a real YYYY-MM-DD
// calendar date. Past dates are deliberately allowed.
func IsValidCalendarDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
