package audio

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// CueFiles maps each cue to the file name searched for under the audio directory.
//
//nolint:gochecknoglobals // Fixed resource names.
var CueFiles = map[timer.Cue]string{
	timer.CueAmbientFocus: "lofi_music.mp3",
	timer.CueSessionEnd:   "session_end.mp3",
	timer.CueBreakEnd:     "break_end.mp3",
}

// LocateCues walks dir and returns the path of each cue file it finds.
// Names match case-insensitively. When a name occurs more than once the
// shallowest path wins, ties broken lexically. Missing cues are absent
// from the result.
func LocateCues(dir string) (map[timer.Cue]string, error) {
	byName := make(map[string]timer.Cue, len(CueFiles))
	for cue, name := range CueFiles {
		byName[strings.ToLower(name)] = cue
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var mu sync.Mutex
	found := make(map[timer.Cue]string, len(CueFiles))
	depth := make(map[timer.Cue]int, len(CueFiles))

	conf := fastwalk.DefaultConfig
	err = fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		cue, ok := byName[strings.ToLower(d.Name())]
		if !ok {
			return nil
		}
		level := strings.Count(filepath.ToSlash(path), "/")
		// fastwalk invokes the callback from several goroutines.
		mu.Lock()
		defer mu.Unlock()
		if prev, seen := depth[cue]; !seen || level < prev || (level == prev && path < found[cue]) {
			found[cue] = path
			depth[cue] = level
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
