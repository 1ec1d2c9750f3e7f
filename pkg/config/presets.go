package config

import "time"

// WidgetPreset returns the widget set for a named preset. Unknown
// names return the "standard" set.
//
// Presets only apply when a config file declares no [[widgets]]
// blocks of its own.
func WidgetPreset(name string) []WidgetConfig {
	switch name {
	case "minimal":
		return minimalPreset()
	case "support":
		return supportPreset()
	case "standard":
		return standardPreset()
	default:
		return standardPreset()
	}
}

// standardPreset is the full intranet dashboard: announcements, quick
// links, tasks, calendar and tickets.
func standardPreset() []WidgetConfig {
	return []WidgetConfig{
		{
			Name:     "announcements",
			Source:   "announcements.json",
			Interval: Duration{5 * time.Minute},
			MaxItems: 6,
		},
		{
			Name:     "quicklinks",
			Source:   "quicklinks.json",
			Interval: Duration{30 * time.Minute},
			MaxItems: 10,
		},
		{
			Name:     "tasks",
			Source:   "tasks.json",
			Interval: Duration{2 * time.Minute},
			MaxItems: 8,
		},
		{
			Name:       "calendar",
			Source:     "calendar.json",
			Interval:   Duration{5 * time.Minute},
			MaxItems:   8,
			WindowDays: 14,
		},
		{
			Name:     "tickets",
			Source:   "tickets.json",
			Interval: Duration{time.Minute},
			MaxItems: 8,
		},
	}
}

// minimalPreset keeps just the personal planning widgets.
func minimalPreset() []WidgetConfig {
	return []WidgetConfig{
		{
			Name:     "tasks",
			Source:   "tasks.json",
			Interval: Duration{2 * time.Minute},
			MaxItems: 12,
		},
		{
			Name:       "calendar",
			Source:     "calendar.json",
			Interval:   Duration{5 * time.Minute},
			MaxItems:   10,
			WindowDays: 7,
		},
	}
}

// supportPreset fronts the helpdesk queue with announcements beside it.
func supportPreset() []WidgetConfig {
	return []WidgetConfig{
		{
			Name:       "tickets",
			Source:     "tickets.json",
			Interval:   Duration{30 * time.Second},
			MaxItems:   14,
			ShowClosed: true,
		},
		{
			Name:     "announcements",
			Source:   "announcements.json",
			Interval: Duration{5 * time.Minute},
			MaxItems: 4,
		},
	}
}
