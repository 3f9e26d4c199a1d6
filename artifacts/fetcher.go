package artifacts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"hanlex.com/lac/logger"
	"hanlex.com/lac/utils"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var fetcherLogger = logger.NewLogger("Artifacts")

type Config struct {
	BundleKey string `envconfig:"LAC_ARTIFACTS_BUNDLE_KEY" default:"models/lac/lac_params.tar.gz"`
}

// Storage is the piece of the S3 client the fetcher needs.
type Storage interface {
	Download(key string) ([]byte, error)
}

// EnsureBundle makes sure the model parameter bundle is unpacked under
// resourceFolder/lac_params, downloading and extracting it when any file is
// missing. Already complete bundles are left untouched.
func EnsureBundle(resourceFolder string, store Storage) error {
	bundlePath := path.Join(resourceFolder, BundleDir)
	if missing := missingFiles(bundlePath); len(missing) == 0 {
		fetcherLogger.Info().
			Str("bundle_path", bundlePath).
			Msg("Model bundle already present, skipping download")
		return nil
	} else {
		fetcherLogger.Info().
			Str("bundle_path", bundlePath).
			Strs("missing_files", missing).
			Msg("Model bundle incomplete, downloading")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fetcherLogger.Error().Err(err).Msg("Could not read env config")
		return err
	}

	data, err := store.Download(config.BundleKey)
	if err != nil {
		return fmt.Errorf("failed to download bundle %s: %w", config.BundleKey, err)
	}
	fetcherLogger.Debug().
		Str("bundle_key", config.BundleKey).
		Int("size", len(data)).
		Uint64("bundle_hash", utils.HashBytes(data)).
		Msg("Downloaded model bundle")

	if err := extractBundle(data, bundlePath); err != nil {
		return fmt.Errorf("failed to extract bundle %s: %w", config.BundleKey, err)
	}

	if missing := missingFiles(bundlePath); len(missing) > 0 {
		return fmt.Errorf("bundle %s is missing files after extraction: %s",
			config.BundleKey, strings.Join(missing, ", "))
	}
	fetcherLogger.Info().Str("bundle_path", bundlePath).Msg("Model bundle ready")
	return nil
}

func missingFiles(bundlePath string) []string {
	var missing []string
	for _, name := range bundleFiles() {
		if _, err := os.Stat(path.Join(bundlePath, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func extractBundle(data []byte, bundlePath string) error {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Clean(header.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archive entry %q escapes the bundle folder", header.Name)
		}
		// the archive may or may not carry the lac_params/ top folder
		name = strings.TrimPrefix(name, BundleDir+string(filepath.Separator))

		target := filepath.Join(bundlePath, name)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		contents, err := ioutil.ReadAll(tarReader)
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, contents, 0644); err != nil {
			return err
		}
	}
}
