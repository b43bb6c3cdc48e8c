package calendar

import (
	"time"

	"markettracker/internal/domain"
)

// holidays is the observed NYSE full-closure set, 2022 through 2026, keyed
// by canonical YYYYMMDD date. Half days are trading days and are not listed.
var holidays = map[string]struct{}{
	// 2022
	"20220117": {}, // Martin Luther King Jr. Day
	"20220221": {}, // Washington's Birthday
	"20220415": {}, // Good Friday
	"20220530": {}, // Memorial Day
	"20220620": {}, // Juneteenth (observed)
	"20220704": {}, // Independence Day
	"20220905": {}, // Labor Day
	"20221124": {}, // Thanksgiving
	"20221226": {}, // Christmas (observed)

	// 2023
	"20230102": {}, // New Year's Day (observed)
	"20230116": {},
	"20230220": {},
	"20230407": {},
	"20230529": {},
	"20230619": {},
	"20230704": {},
	"20230904": {},
	"20231123": {},
	"20231225": {},

	// 2024
	"20240101": {},
	"20240115": {},
	"20240219": {},
	"20240329": {},
	"20240527": {},
	"20240619": {},
	"20240704": {},
	"20240902": {},
	"20241128": {},
	"20241225": {},

	// 2025
	"20250101": {},
	"20250109": {}, // National Day of Mourning
	"20250120": {},
	"20250217": {},
	"20250418": {},
	"20250526": {},
	"20250619": {},
	"20250704": {},
	"20250901": {},
	"20251127": {},
	"20251225": {},

	// 2026
	"20260101": {},
	"20260119": {},
	"20260216": {},
	"20260403": {},
	"20260525": {},
	"20260619": {},
	"20260703": {}, // Independence Day (observed)
	"20260907": {},
	"20261126": {},
	"20261225": {},
}

// IsHoliday reports whether t falls on an observed market holiday.
func IsHoliday(t time.Time) bool {
	_, ok := holidays[t.Format(domain.DateFormat)]
	return ok
}
