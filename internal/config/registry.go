package config

type OptionType string

const (
	OptionTypeString OptionType = "string"
	OptionTypeBool   OptionType = "bool"
	OptionTypeInt    OptionType = "int"
)

type IntBounds struct {
	Min int
	Max int
}

type OptionMetadata struct {
	KeyPath     string
	Type        OptionType
	Bounds      *IntBounds
	Description string
}

// OptionRegistry returns the known config options in display order.
// The config get/set commands accept exactly these keys.
func OptionRegistry() []OptionMetadata {
	return []OptionMetadata{
		{KeyPath: KeyListName, Type: OptionTypeString, Description: "List the form opens by default"},
		{KeyPath: KeyDataFile, Type: OptionTypeString, Description: "Path to the list data file"},
		{KeyPath: KeyHistoryList, Type: OptionTypeString, Description: "Audit list read for the history panel"},
		{KeyPath: KeySubmittedField, Type: OptionTypeString, Description: "Wire name of the submitted flag field"},
		{KeyPath: KeyAllowSave, Type: OptionTypeBool, Description: "Show the save and submit actions"},
		{KeyPath: KeyAllowDelete, Type: OptionTypeBool, Description: "Show the delete action on saved records"},
		{KeyPath: KeyAllowPrint, Type: OptionTypeBool, Description: "Show the print action"},
		{KeyPath: KeyRequireAttachment, Type: OptionTypeBool, Description: "Block save until the record has an attachment"},
		{KeyPath: KeyHistoryEnabled, Type: OptionTypeBool, Description: "Load and show the history panel"},
		{
			KeyPath:     KeyRedirectDelay,
			Type:        OptionTypeInt,
			Bounds:      &IntBounds{Min: MinRedirectDelaySeconds, Max: MaxRedirectDelaySeconds},
			Description: "Seconds the success status stays up before the form closes",
		},
		{KeyPath: KeyDebug, Type: OptionTypeBool, Description: "Enable debug logging"},
		{KeyPath: KeyLogFormat, Type: OptionTypeString, Description: "Log format: human or json"},
		{KeyPath: KeyLogFile, Type: OptionTypeString, Description: "Path to the log file"},
	}
}

// LookupOption finds a registry entry by key path.
func LookupOption(keyPath string) (OptionMetadata, bool) {
	for _, opt := range OptionRegistry() {
		if opt.KeyPath == keyPath {
			return opt, true
		}
	}
	return OptionMetadata{}, false
}
