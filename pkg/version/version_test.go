package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullString(t *testing.T) {
	orig, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = orig, origCommit })

	Version = "dev"
	assert.Equal(t, "jenkins-utils development version", FullString())

	Version, GitCommit = "1.2.0", "abc1234"
	assert.Equal(t, "jenkins-utils 1.2.0 (abc1234)", FullString())
	assert.Equal(t, "1.2.0", String())
}

func TestInfo(t *testing.T) {
	info := Info()
	assert.Equal(t, runtime.Version(), info["goVersion"])
	assert.Contains(t, info, "buildDate")
	assert.Contains(t, info, "gitCommit")
}
