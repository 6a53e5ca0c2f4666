package overlay

// Messages produced by the controller's commands. The host program feeds
// every message it does not handle itself back into Controller.Update.
type (
	// debounceMsg fires when the selection has been quiet for debounceDelay.
	debounceMsg struct {
		id uint64
	}

	// layoutSettledMsg is delivered one frame after an overlay is created,
	// once its rendered size is known.
	layoutSettledMsg struct {
		overlayID uint64
	}

	// triggerExpiredMsg ends an unused Trigger.
	triggerExpiredMsg struct {
		triggerID  uint64
		generation uint64
	}

	// ExplanationMsg carries the result of a relay request made for one Panel.
	ExplanationMsg struct {
		PanelID uint64
		Seq     uint64
		Text    string
		Err     error
	}

	// panelRemovedMsg ends the exit animation of a dismissed Panel.
	panelRemovedMsg struct {
		panelID uint64
	}

	// speechEndedMsg reports natural completion or failure of an utterance.
	speechEndedMsg struct {
		panelID     uint64
		utteranceID uint64
		err         error
	}

	toastFadeMsg struct {
		id uint64
	}

	toastExpiredMsg struct {
		id uint64
	}

	// ThemePrefChangedMsg is sent when the stored preference was changed by
	// another process.
	ThemePrefChangedMsg struct {
		Pref ThemePref
	}
)
