package verify

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/chainspec"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/resources"
)

func TestVerifyEmbedded(t *testing.T) {
	for _, profile := range []common.Profile{common.ProfilePublicTest, common.ProfileMain} {
		data, err := readSnapshot(resources.FrozenSnapshots{}, profile, "")
		require.NoError(t, err)
		summary, err := Verify(profile, data)
		require.NoError(t, err, profile.String())
		require.True(t, summary.Frozen)
		require.Equal(t, profile, summary.Profile)
	}
}

func TestVerifyFile(t *testing.T) {
	data, err := resources.FrozenSnapshots{}.Snapshot(common.ProfileMain)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "main.json")
	require.NoError(t, os.WriteFile(path, bytes.ReplaceAll(data, []byte("  "), []byte("\t")), 0o600))
	read, err := readSnapshot(resources.FrozenSnapshots{}, common.ProfileMain, path)
	require.NoError(t, err)
	_, err = Verify(common.ProfileMain, read)
	require.ErrorIs(t, err, chainspec.ErrMalformedSnapshot)

	// A snapshot of another profile does not verify.
	_, err = Verify(common.ProfilePublicTest, data)
	require.ErrorIs(t, err, chainspec.ErrMalformedSnapshot)

	_, err = Verify(common.ProfileDevelopment, data)
	require.Error(t, err)

	_, err = readSnapshot(chainspec.DirSnapshots{Dir: t.TempDir()}, common.ProfileMain, "")
	require.Error(t, err)
}
