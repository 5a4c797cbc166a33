package telegram

import "strings"

// Action is an inbound button press decoded from callback data.
type Action int

const (
	ActionApply Action = iota
	ActionIgnore
	ActionUndoApply
	ActionUndoIgnore
)

// Callback data prefixes. The job id follows the prefix directly; ids
// never contain underscores beyond these markers.
const (
	callbackApply      = "apply_"
	callbackIgnore     = "ignore_"
	callbackUndoApply  = "undo_apply_"
	callbackUndoIgnore = "undo_ignore_"
)

// ParseCallback decodes callback data into an action and a job id.
func ParseCallback(data string) (Action, string, bool) {
	switch {
	case strings.HasPrefix(data, callbackUndoApply):
		return ActionUndoApply, strings.TrimPrefix(data, callbackUndoApply), true
	case strings.HasPrefix(data, callbackUndoIgnore):
		return ActionUndoIgnore, strings.TrimPrefix(data, callbackUndoIgnore), true
	case strings.HasPrefix(data, callbackApply):
		return ActionApply, strings.TrimPrefix(data, callbackApply), true
	case strings.HasPrefix(data, callbackIgnore):
		return ActionIgnore, strings.TrimPrefix(data, callbackIgnore), true
	}
	return 0, "", false
}
