// Package config holds the tunable parameters of the extraction pipeline.
//
// PreprocessingConfig controls image normalisation and tensor conversion;
// DetectionParams controls frame, lane and cell extraction. Both are plain
// values: the pipeline copies a snapshot at the start of every call, so a
// configuration change never affects a frame already in flight.
//
// Configurations can be loaded from a JSON file with Load. Fields omitted from
// the file keep their defaults.
package config
