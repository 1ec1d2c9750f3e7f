package bus

// Well-known event names. These names and their payload shapes are the
// interop contract between components; changing one breaks every
// subscriber that relies on it.
const (
	// EventWidgetRefreshed fires after a widget load succeeds.
	// Args: [name string].
	EventWidgetRefreshed = "widget:refreshed"

	// EventWidgetError fires after a widget load fails.
	// Args: [name string, err error].
	EventWidgetError = "widget:error"

	// EventWidgetRefreshRequested asks the orchestrator to refresh
	// one widget. Args: [name string].
	EventWidgetRefreshRequested = "widget:refresh-requested"

	// EventNetworkOnline fires when connectivity is regained.
	EventNetworkOnline = "network:online"

	// EventNetworkOffline fires when connectivity is lost.
	EventNetworkOffline = "network:offline"

	// EventPrefsChanged fires after a preference write.
	// Args: [field string].
	EventPrefsChanged = "prefs:changed"

	// EventThemeChanged fires after the active theme changes.
	// Args: [theme string].
	EventThemeChanged = "theme:changed"

	// EventRefreshAll is the refresh-every-widget keyboard shortcut.
	EventRefreshAll = "shortcut:refresh-all"

	// EventToggleTheme is the cycle-theme keyboard shortcut.
	EventToggleTheme = "shortcut:toggle-theme"
)

// WidgetName extracts the widget name argument from a widget:* event.
// It returns "" when the payload does not carry one.
func WidgetName(e Event) string {
	if len(e.Args) == 0 {
		return ""
	}
	name, _ := e.Args[0].(string)
	return name
}

// WidgetErr extracts the error argument from a widget:error event. It
// returns nil when the payload does not carry one.
func WidgetErr(e Event) error {
	if len(e.Args) < 2 {
		return nil
	}
	err, _ := e.Args[1].(error)
	return err
}

// Field extracts the field name argument from a prefs:changed or
// theme:changed event.
func Field(e Event) string {
	if len(e.Args) == 0 {
		return ""
	}
	field, _ := e.Args[0].(string)
	return field
}
