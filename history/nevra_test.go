package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitNevra(t *testing.T) {
	cases := []struct {
		raw                               string
		name, version, release, arch      string
		epoch                             int
		wantErr                           bool
	}{
		{raw: "bash-5.1-4.fc35.x86_64", name: "bash", version: "5.1", release: "4.fc35", arch: "x86_64"},
		{raw: "bash-1:5.1-4.fc35.x86_64", name: "bash", epoch: 1, version: "5.1", release: "4.fc35", arch: "x86_64"},
		{raw: "glibc-common-2.34-8.fc35.x86_64", name: "glibc-common", version: "2.34", release: "8.fc35", arch: "x86_64"},
		{raw: "missing-arch-only", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			name, epoch, version, release, arch, err := splitNevra(c.raw)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.name, name)
			require.Equal(t, c.epoch, epoch)
			require.Equal(t, c.version, version)
			require.Equal(t, c.release, release)
			require.Equal(t, c.arch, arch)
		})
	}
}
