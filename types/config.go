package types

import (
	"errors"
	"gopkg.in/yaml.v3"
	"hanlex.com/lac/logger"
	"hanlex.com/lac/utils"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"
)

const (
	// pipeline type
	LexicalAnalysisPipeline  = "lexical_analysis"
	SegmentationOnlyPipeline = "segmentation_only"

	// features
	CustomDictFeature = "custom_dict"
	EntitiesFeature   = "entities"
)

type LACConfig struct {
	MaxSeqLen  int    `yaml:"max_seq_len" json:"max_seq_len"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	CustomDict string `yaml:"custom_dict" json:"custom_dict"`
}

// GetHashCode identifies the compiled user dictionary this config needs.
// Configurations sharing the same dictionary file reuse one compiled copy.
func (cfg LACConfig) GetHashCode() uint64 {
	return utils.HashString(strings.ToLower(cfg.CustomDict))
}

type ParamsConfig struct {
	LAC LACConfig `yaml:"LAC" json:"lac"`
}

type Configuration struct {
	Name     string       `json:"name"`
	FilePath string       `json:"file_path"`
	Params   ParamsConfig `yaml:"params" json:"params"`
	Pipeline string       `yaml:"pipeline" json:"pipeline"`
	Features []string     `yaml:"features" json:"features"`
}

func (cfg Configuration) CheckFeature(featureName string) bool {
	for _, feat := range cfg.Features {
		if feat == featureName {
			return true
		}
	}

	return false
}

func LoadConfigurations(dirPath string) ([]Configuration, error) {
	lacLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			cfg := Configuration{
				Name:     strings.Split(file.Name(), ".yaml")[0],
				FilePath: path.Join(dirPath, file.Name()),
			}
			buf, err := ioutil.ReadFile(cfg.FilePath)
			if err != nil {
				lacLogger.Err(err)
				return
			}
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				lacLogger.Err(err)
				return
			}

			// check pipeline type
			if cfg.Pipeline != LexicalAnalysisPipeline && cfg.Pipeline != SegmentationOnlyPipeline {
				lacLogger.Err(errors.New("wrong pipeline type"))
				return
			}

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(configChan))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	return configs, nil
}
