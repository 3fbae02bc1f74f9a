package config

// Config is the root configuration of the rhymer tools.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Index      IndexConfig      `yaml:"index"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Generate   GenerateConfig   `yaml:"generate"`
	Log        LogConfig        `yaml:"log"`
}

// CorpusConfig points at the lyrics corpus, one line per record.
type CorpusConfig struct {
	Path string `yaml:"path" env:"RHYMER_CORPUS_PATH" env-default:"rap_lyrics.txt"`
}

// IndexConfig locates the compiled index. Paths ending in .db, .sqlite or .sqlite3
// use the SQLite store, anything else the compressed file store.
type IndexConfig struct {
	Path string `yaml:"path" env:"RHYMER_INDEX_PATH" env-default:"rap_lyrics.ind"`
}

// DictionaryConfig points at a CMU Pronouncing Dictionary file.
type DictionaryConfig struct {
	Path string `yaml:"path" env:"RHYMER_DICT_PATH" env-default:"cmudict.dict"`
}

// GenerateConfig bounds the line walks. Seed 0 draws a random seed per run.
type GenerateConfig struct {
	LineMin   int    `yaml:"line_min"   env:"RHYMER_LINE_MIN"   env-default:"6"`
	LineMax   int    `yaml:"line_max"   env:"RHYMER_LINE_MAX"   env-default:"8"`
	MaxTokens int    `yaml:"max_tokens" env:"RHYMER_MAX_TOKENS" env-default:"24"`
	Seed      uint64 `yaml:"seed"       env:"RHYMER_SEED"       env-default:"0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
