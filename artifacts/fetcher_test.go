package artifacts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path"
	"testing"
)

type fakeStorage struct {
	data  []byte
	err   error
	calls int
}

func (store *fakeStorage) Download(key string) ([]byte, error) {
	store.calls++
	if store.err != nil {
		return nil, store.err
	}
	return store.data, nil
}

func makeBundle(t *testing.T, prefix string, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)
	for _, name := range names {
		contents := []byte("contents of " + name)
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Name:     prefix + name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(contents)),
		}))
		_, err := tarWriter.Write(contents)
		require.NoError(t, err)
	}
	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())
	return buf.Bytes()
}

func TestEnsureBundleDownloadsAndExtracts(t *testing.T) {
	resourceFolder := t.TempDir()
	store := &fakeStorage{data: makeBundle(t, BundleDir+"/", bundleFiles()...)}

	require.NoError(t, EnsureBundle(resourceFolder, store))
	require.Equal(t, 1, store.calls)

	contents, err := ioutil.ReadFile(path.Join(resourceFolder, BundleDir, WordDictFile))
	require.NoError(t, err)
	require.Equal(t, "contents of "+WordDictFile, string(contents))
}

func TestEnsureBundleSkipsCompleteBundle(t *testing.T) {
	resourceFolder := t.TempDir()
	store := &fakeStorage{data: makeBundle(t, "", bundleFiles()...)}

	require.NoError(t, EnsureBundle(resourceFolder, store))
	require.NoError(t, EnsureBundle(resourceFolder, store))
	require.Equal(t, 1, store.calls)
}

func TestEnsureBundleWithoutTopFolder(t *testing.T) {
	resourceFolder := t.TempDir()
	store := &fakeStorage{data: makeBundle(t, "", bundleFiles()...)}

	require.NoError(t, EnsureBundle(resourceFolder, store))

	contents, err := ioutil.ReadFile(path.Join(resourceFolder, BundleDir, TagDictFile))
	require.NoError(t, err)
	require.Equal(t, "contents of "+TagDictFile, string(contents))
}

func TestEnsureBundleIncompleteArchive(t *testing.T) {
	resourceFolder := t.TempDir()
	store := &fakeStorage{data: makeBundle(t, "", WordDictFile, TagDictFile)}

	require.Error(t, EnsureBundle(resourceFolder, store))
}

func TestEnsureBundleDownloadError(t *testing.T) {
	resourceFolder := t.TempDir()
	store := &fakeStorage{err: errors.New("no such key")}

	require.Error(t, EnsureBundle(resourceFolder, store))
}

func TestExtractBundleRejectsEscapingEntries(t *testing.T) {
	bundlePath := path.Join(t.TempDir(), BundleDir)
	data := makeBundle(t, "../", WordDictFile)

	require.Error(t, extractBundle(data, bundlePath))
}

func TestExtractBundleRejectsGarbage(t *testing.T) {
	bundlePath := path.Join(t.TempDir(), BundleDir)
	require.Error(t, extractBundle([]byte("not a gzip stream"), bundlePath))
}
