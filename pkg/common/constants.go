package common

import "time"

const (
	TranslationCacheTTL = 30 * time.Minute
	PhrasebookCacheTTL  = 1 * time.Hour
	CultureCacheTTL     = 6 * time.Hour
	PlacesCacheTTL      = 10 * time.Minute

	TranslationNamespace = "translation"
	PhrasebookNamespace  = "phrasebook"
	CultureNamespace     = "culture"
	PoiNamespace         = "poi"
	StaysNamespace       = "stays"

	SignatureHeader = "X-Request-Signature"
	TimestampHeader = "X-Timestamp"
)
