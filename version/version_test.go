package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, ServiceName, info.Service)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Service:  "caption-relay",
		Version:  "1.2.3",
		Commit:   "0123456789abcdef",
		Go:       "go1.24.0",
		Platform: "linux/amd64",
	}
	assert.Equal(t, "caption-relay 1.2.3 (0123456789ab) go1.24.0 linux/amd64", info.String())

	info.Commit = ""
	assert.Equal(t, "caption-relay 1.2.3 go1.24.0 linux/amd64", info.String())
}
