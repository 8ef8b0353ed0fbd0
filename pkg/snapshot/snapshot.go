package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"tichu-server/internal/util"
)

// UpdateEnv rewrites every snapshot instead of comparing when set to "1"
const UpdateEnv = "TICHU_UPDATE_SNAPSHOTS"

var lock sync.Mutex
var callCount = make(map[string]int)

// ValidateSnapshot compares obj, encoded as indented JSON, to testdata/<test function>-<n>.json
// where n counts the calls made by the same function. A missing snapshot is written.
// depth is the number of helper frames between the test function and this call.
func ValidateSnapshot(t *testing.T, obj interface{}, depth int, msgAndArgs ...interface{}) {
	t.Helper()

	filename := nextFilename(depth + 2)
	actual, err := json.MarshalIndent(obj, "", "  ")
	if !assert.NoError(t, err, "could not encode snapshot") {
		return
	}

	expects, err := os.ReadFile(filename)
	if os.IsNotExist(err) || util.Getenv(UpdateEnv, "") == "1" {
		if err := write(filename, actual); err != nil {
			t.Fatalf("could not write snapshot %s: %v", filename, err)
		}

		return
	} else if err != nil {
		t.Fatalf("could not read snapshot %s: %v", filename, err)
	}

	if !assert.Equal(t, strings.Trim(string(expects), "\n"), strings.Trim(string(actual), "\n"), msgAndArgs...) {
		t.Logf("snapshot %s, run with %s=1 to update", filename, UpdateEnv)
	}
}

func nextFilename(skip int) string {
	pc, _, _, _ := runtime.Caller(skip)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	lock.Lock()
	call := callCount[funcName]
	callCount[funcName] = call + 1
	lock.Unlock()

	return filepath.Join("testdata", fmt.Sprintf("%s-%d.json", funcName, call))
}

func write(filename string, b []byte) error {
	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	return os.WriteFile(filename, append(b, '\n'), 0644)
}
