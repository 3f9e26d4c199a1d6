package pipeline

import (
	"encoding/json"
	"errors"
	"hanlex.com/lac/artifacts"
	"hanlex.com/lac/custom"
	"hanlex.com/lac/lexical"
	"hanlex.com/lac/logger"
	"hanlex.com/lac/ml"
	"hanlex.com/lac/seg"
	"hanlex.com/lac/types"
	"hanlex.com/lac/vocab"
	"path"
)

type LexicalParams struct {
	ResourceFolder   string                `json:"resource_folder"`
	DictionaryFolder string                `json:"dictionary_folder"`
	GseDictionary    string                `json:"gse_dictionary"`
	Configurations   []types.Configuration `json:"configurations"`
}

func GetDefaultLexicalParams(dirPath string, dictPath string, cfgs []types.Configuration) LexicalParams {
	return LexicalParams{
		ResourceFolder:   path.Join(dirPath, "resources"),
		DictionaryFolder: dictPath,
		Configurations:   cfgs,
	}
}

type configChain struct {
	name string
	run  func(in <-chan string) <-chan Result
}

func Lexical(params LexicalParams) (Pipeline, error) {
	lacLogger := logger.NewLogger("Lexical analysis pipeline")
	errLogger := lacLogger.With().Caller().Logger()
	lacLogger.Info().
		Interface("params", params).
		Msg("Starting lexical analysis pipeline (see parameters in 'params' field)")

	if len(params.Configurations) == 0 {
		err := errors.New("no configurations to run")
		errLogger.Err(err).Msg("Failed to start pipeline")
		return nil, err
	}

	needsModel := false
	needsGse := false
	for _, cfg := range params.Configurations {
		switch cfg.Pipeline {
		case types.LexicalAnalysisPipeline:
			needsModel = true
		case types.SegmentationOnlyPipeline:
			needsGse = true
		}
	}

	bundlePath := path.Join(params.ResourceFolder, artifacts.BundleDir)

	var wordVocab *vocab.Vocab
	var tagVocab *vocab.Vocab
	var q2b map[rune]rune
	var crfParams *ml.CRF
	var backend ml.Backend
	if needsModel {
		var err error
		wordDictPath := path.Join(bundlePath, artifacts.WordDictFile)
		wordVocab, err = vocab.Load(wordDictPath)
		if err != nil {
			errLogger.Err(err).
				Str("word_dict_path", wordDictPath).
				Msg("Failed to load word dictionary")
			return nil, err
		}

		tagDictPath := path.Join(bundlePath, artifacts.TagDictFile)
		tagVocab, err = vocab.Load(tagDictPath)
		if err != nil {
			errLogger.Err(err).
				Str("tag_dict_path", tagDictPath).
				Msg("Failed to load tag dictionary")
			return nil, err
		}

		q2bDictPath := path.Join(bundlePath, artifacts.Q2BDictFile)
		q2b, err = vocab.LoadMapping(q2bDictPath)
		if err != nil {
			errLogger.Err(err).
				Str("q2b_dict_path", q2bDictPath).
				Msg("Failed to load q2b normalization dictionary")
			return nil, err
		}

		crfParamsPath := path.Join(bundlePath, artifacts.CRFParamsFile)
		crfParams, err = ml.LoadCRFFromFile(crfParamsPath)
		if err != nil {
			errLogger.Err(err).
				Str("crf_params_path", crfParamsPath).
				Msg("Failed to load CRF params")
			return nil, err
		}

		modelPath := path.Join(bundlePath, artifacts.ModelFile)
		backend, err = ml.NewOnnxBackend(modelPath)
		if err != nil {
			errLogger.Err(err).
				Str("model_path", modelPath).
				Msg("Failed to load ONNX model")
			return nil, err
		}
	}

	var gseSegmenter *seg.GseSegmenter
	if needsGse {
		var err error
		gseSegmenter, err = seg.New(params.GseDictionary)
		if err != nil {
			errLogger.Err(err).
				Str("gse_dictionary", params.GseDictionary).
				Msg("Failed to load gse segmenter")
			return nil, err
		}
	}

	// user dictionaries shared across configurations pointing at the same file
	customDicts := make(map[uint64]*custom.Dictionary)
	for _, cfg := range params.Configurations {
		if cfg.Pipeline != types.LexicalAnalysisPipeline ||
			!cfg.CheckFeature(types.CustomDictFeature) ||
			cfg.Params.LAC.CustomDict == "" {
			continue
		}
		key := cfg.Params.LAC.GetHashCode()
		if _, ok := customDicts[key]; ok {
			continue
		}
		dictPath := path.Join(params.DictionaryFolder, cfg.Params.LAC.CustomDict)
		dict, err := custom.Load(dictPath)
		if err != nil {
			errLogger.Err(err).
				Str("custom_dict_path", dictPath).
				Msg("Failed to load custom dictionary")
			return nil, err
		}
		lacLogger.Info().
			Str("custom_dict_path", dictPath).
			Int("entries", dict.Size()).
			Msg("Loaded custom dictionary")
		customDicts[key] = dict
	}

	chains := make([]configChain, 0, len(params.Configurations))
	for _, cfg := range params.Configurations {
		switch cfg.Pipeline {
		case types.LexicalAnalysisPipeline:
			encoder, err := lexical.NewEncoder(wordVocab, q2b, cfg.Params.LAC.MaxSeqLen)
			if err != nil {
				errLogger.Err(err).
					Str("config_name", cfg.Name).
					Msg("Failed to create encoder")
				return nil, err
			}
			encode := NewEncoderStage(encoder)
			batch := NewBatcherStage(cfg.Params.LAC.BatchSize)
			infer := NewInferenceStage(backend, crfParams, tagVocab)
			withEntities := cfg.CheckFeature(types.EntitiesFeature)
			decode := NewDecoderStage(withEntities)

			var customStage func(in <-chan Analyzed) <-chan Analyzed
			if dict, ok := customDicts[cfg.Params.LAC.GetHashCode()]; ok && cfg.CheckFeature(types.CustomDictFeature) {
				customStage = NewCustomDictStage(dict, withEntities)
			}
			collect := newResultCollector(cfg.Name)

			chains = append(chains, configChain{
				name: cfg.Name,
				run: func(in <-chan string) <-chan Result {
					analyzed := decode(infer(batch(encode(in))))
					if customStage != nil {
						analyzed = customStage(analyzed)
					}
					return collect(analyzed)
				},
			})
		case types.SegmentationOnlyPipeline:
			gseStage := NewGseStage(gseSegmenter)
			collect := newResultCollector(cfg.Name)
			chains = append(chains, configChain{
				name: cfg.Name,
				run: func(in <-chan string) <-chan Result {
					return collect(gseStage(in))
				},
			})
		}
	}

	splitter := NewTextChannelSplitter(len(chains))

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := lacLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Int("texts", len(request.Texts)).Msg("Started lexical analysis pipeline")

		go func() {
			var in = make(chan string)

			split := splitter(in)

			resultChannel := make(chan Result)
			defer close(resultChannel)

			for i, chain := range chains {
				connect(chain.run(split[i]), resultChannel)
			}

			for _, text := range request.Texts {
				in <- text
			}
			close(in)

			response := make(map[string]interface{})
			for i := 0; i < len(chains); i++ {
				res := <-resultChannel
				if res.Err != nil {
					pplnLog.Err(res.Err).
						Str("config_name", res.ConfigName).
						Msg("Configuration finished with error")
					response[res.ConfigName] = map[string]string{"error": res.Err.Error()}
					continue
				}
				pplnLog.Info().
					Str("config_name", res.ConfigName).
					Msg("Finished pipeline for configuration")
				response[res.ConfigName] = res.Data
			}

			buf, err := json.Marshal(response)
			if err != nil {
				errLogger.Err(err).Str("tid", request.Tid).Msg("Failed to marshall response")
			}
			pplnLog.Info().Msg("Finished lexical analysis pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

func newResultCollector(cfgName string) func(in <-chan Analyzed) <-chan Result {
	return func(in <-chan Analyzed) <-chan Result {
		out := make(chan Result, 1)
		go func() {
			defer close(out)
			results := make([]types.Result, 0)
			var firstErr error
			for analyzed := range in {
				if analyzed.Err != nil {
					if firstErr == nil {
						firstErr = analyzed.Err
					}
					continue
				}
				results = append(results, analyzed.Result)
			}
			out <- Result{ConfigName: cfgName, Data: results, Err: firstErr}
		}()
		return out
	}
}

func connect(from <-chan Result, to chan<- Result) {
	go func() {
		for v := range from {
			to <- v
		}
	}()
}
