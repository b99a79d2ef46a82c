// Package batch reads and writes the multi-dataset text format used to
// submit LCS jobs in bulk.
//
// Input:
//
//	D            number of datasets, 1 ≤ D ≤ Limits.MaxDatasets
//	seq1         first sequence of dataset 1
//	seq2         second sequence of dataset 1
//	...          two lines per dataset
//
// Output: for every dataset, all of its LCS one per line in ascending
// order; datasets are separated by one blank line.
//
//	1            ijiji
//	ijkijkii  →  ijiki
//	ikjikji      ...
//
// Validation failures are descriptive errors. A bad header aborts the whole
// input; a bad dataset is reported as a *DatasetError naming it, and the
// datasets before it are still computed and written.
package batch
