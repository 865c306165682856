package tag

import "fmt"

// Code is the numeric type of a tag record.
type Code uint16

const (
	CodeEnd                 Code = 0
	CodeShowFrame           Code = 1
	CodeDefineShape         Code = 2
	CodePlaceObject         Code = 4
	CodeRemoveObject        Code = 5
	CodeDefineBits          Code = 6
	CodeJPEGTables          Code = 8
	CodeSetBackgroundColor  Code = 9
	CodeDoAction            Code = 12
	CodeDefineBitsLossless  Code = 20
	CodeDefineBitsJPEG2     Code = 21
	CodeDefineShape2        Code = 22
	CodePlaceObject2        Code = 26
	CodeRemoveObject2       Code = 28
	CodeDefineShape3        Code = 32
	CodeDefineBitsJPEG3     Code = 35
	CodeDefineBitsLossless2 Code = 36
	CodeDefineSprite        Code = 39
	CodeFrameLabel          Code = 43
	CodeDefineMorphShape    Code = 46
	CodeExportAssets        Code = 56
	CodePlaceObject3        Code = 70
	CodeDefineShape4        Code = 83
	CodeDefineMorphShape2   Code = 84
	CodeDefineBitsJPEG4     Code = 90
)

var codeNames = map[Code]string{
	CodeEnd:                 "End",
	CodeShowFrame:           "ShowFrame",
	CodeDefineShape:         "DefineShape",
	CodePlaceObject:         "PlaceObject",
	CodeRemoveObject:        "RemoveObject",
	CodeDefineBits:          "DefineBits",
	CodeJPEGTables:          "JPEGTables",
	CodeSetBackgroundColor:  "SetBackgroundColor",
	CodeDoAction:            "DoAction",
	CodeDefineBitsLossless:  "DefineBitsLossless",
	CodeDefineBitsJPEG2:     "DefineBitsJPEG2",
	CodeDefineShape2:        "DefineShape2",
	CodePlaceObject2:        "PlaceObject2",
	CodeRemoveObject2:       "RemoveObject2",
	CodeDefineShape3:        "DefineShape3",
	CodeDefineBitsJPEG3:     "DefineBitsJPEG3",
	CodeDefineBitsLossless2: "DefineBitsLossless2",
	CodeDefineSprite:        "DefineSprite",
	CodeFrameLabel:          "FrameLabel",
	CodeDefineMorphShape:    "DefineMorphShape",
	CodeExportAssets:        "ExportAssets",
	CodePlaceObject3:        "PlaceObject3",
	CodeDefineShape4:        "DefineShape4",
	CodeDefineMorphShape2:   "DefineMorphShape2",
	CodeDefineBitsJPEG4:     "DefineBitsJPEG4",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint16(c))
}

// Families of definition codes the catalog builds tables from.
var (
	ShapeCodes  = []Code{CodeDefineShape, CodeDefineShape2, CodeDefineShape3, CodeDefineShape4}
	SpriteCodes = []Code{CodeDefineSprite}
	MorphCodes  = []Code{CodeDefineMorphShape, CodeDefineMorphShape2}
	ImageCodes  = []Code{
		CodeDefineBitsLossless, CodeDefineBitsLossless2,
		CodeDefineBits, CodeDefineBitsJPEG2, CodeDefineBitsJPEG3, CodeDefineBitsJPEG4,
	}
	// DisplayCodes are the tags replayed by the timeline builder.
	DisplayCodes = []Code{
		CodeEnd, CodeShowFrame, CodeDoAction, CodeFrameLabel,
		CodePlaceObject, CodePlaceObject2, CodePlaceObject3,
		CodeRemoveObject, CodeRemoveObject2,
	}
)
