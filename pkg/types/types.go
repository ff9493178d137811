package types

// Direction represents an OpenCC conversion profile
type Direction string

const (
	DirectionT2S   Direction = "t2s"   // Traditional to Simplified
	DirectionTW2S  Direction = "tw2s"  // Taiwan Traditional to Simplified
	DirectionTW2SP Direction = "tw2sp" // Taiwan Traditional to Simplified, with phrases
	DirectionHK2S  Direction = "hk2s"  // Hong Kong Traditional to Simplified
	DirectionS2T   Direction = "s2t"   // Simplified to Traditional
	DirectionS2TW  Direction = "s2tw"  // Simplified to Taiwan Traditional
	DirectionS2TWP Direction = "s2twp" // Simplified to Taiwan Traditional, with phrases
	DirectionS2HK  Direction = "s2hk"  // Simplified to Hong Kong Traditional
)

// Directions lists every supported conversion profile
var Directions = []Direction{
	DirectionT2S, DirectionTW2S, DirectionTW2SP, DirectionHK2S,
	DirectionS2T, DirectionS2TW, DirectionS2TWP, DirectionS2HK,
}

// ConversionMode controls which parts of a markup document are converted
type ConversionMode string

const (
	ModeFull   ConversionMode = "full"   // Convert the whole document text
	ModeMarkup ConversionMode = "markup" // Convert character data only, leave tags and attributes intact
)

// InputKind distinguishes a single file selection from a directory selection
type InputKind string

const (
	InputFile      InputKind = "file"
	InputDirectory InputKind = "directory"
)
