package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOutputFileName expands an output name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {<key>}     - params[key], e.g. {profile}, {report}, {original}
//   - params: Placeholder values. Path separators in values become "_".
//
// RETURNS:
//   - The file name, always ending in ".xml".
//
// EXAMPLE:
//   format: "{profile}_{report}_{timestamp}.xml"
//   params: {"profile": "OJS_JR1", "report": "JR1"}
//   output: "OJS_JR1_JR1_20240115_143022.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	pairs := []string{
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", pathSafe.Replace(value))
	}

	name := strings.NewReplacer(pairs...).Replace(format)
	if !strings.HasSuffix(strings.ToLower(name), ".xml") {
		name += ".xml"
	}
	return name
}

var pathSafe = strings.NewReplacer("/", "_", "\\", "_")
