package director

import (
	"fmt"
	"path/filepath"
	"time"
)

// CompositionPath names a generated composition after its input and the
// generation time, so the newest file in dir is the last one generated.
func CompositionPath(dir, input string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", compositionID(input), now.Format("2006-01-02_15-04-05")))
}
