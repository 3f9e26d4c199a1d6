package artifacts

// Contents of the model parameter bundle. The bundle is a tar.gz archive
// holding the fixed vocabularies, the CRF transition parameters and the
// exported ONNX network.
const (
	BundleDir     = "lac_params"
	WordDictFile  = "word.dic"
	TagDictFile   = "tag.dic"
	Q2BDictFile   = "q2b.dic"
	CRFParamsFile = "crf.json"
	ModelFile     = "model.onnx"
)

func bundleFiles() []string {
	return []string{WordDictFile, TagDictFile, Q2BDictFile, CRFParamsFile, ModelFile}
}
