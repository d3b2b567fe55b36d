package convert

import "strings"

// Format is the canonical identifier for a file type, decoupled from raw
// file extensions. Registries and converters only ever see normalized
// formats.
type Format string

// inputAliases collapses extension spellings to the canonical input format.
var inputAliases = map[string]Format{
	"jpg":  "jpeg",
	"jfif": "jpeg",
	"htm":  "html",
	"tif":  "tiff",
	"yml":  "yaml",
	"mpeg": "mpg",
}

// outputAliases maps a canonical format to the extension written on disk.
var outputAliases = map[string]Format{
	"jpeg": "jpg",
	"tiff": "tif",
}

// NormalizeInputFormat canonicalizes a file-extension-like string to the
// identifier used by the registry. Unknown strings pass through
// lower-cased; whether they are convertible is decided at resolution time.
func NormalizeInputFormat(raw string) Format {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	if canonical, ok := inputAliases[s]; ok {
		return canonical
	}
	return Format(s)
}

// NormalizeOutputFormat maps a target format to the extension used for
// output file names. Unknown strings pass through lower-cased.
func NormalizeOutputFormat(raw string) Format {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))
	if ext, ok := outputAliases[s]; ok {
		return ext
	}
	return Format(s)
}

// OutputFileName derives the output file name for a source file and target
// format: the extension after the last dot is replaced with the normalized
// target extension. A name without an extension gets one appended.
func OutputFileName(fileName string, target Format) string {
	ext := string(NormalizeOutputFormat(string(target)))
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return fileName + "." + ext
	}
	return fileName[:idx+1] + ext
}

// SourceFormat extracts and normalizes the format from a file name's own
// extension. Empty when the name has no extension.
func SourceFormat(fileName string) Format {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return NormalizeInputFormat(fileName[idx+1:])
}
