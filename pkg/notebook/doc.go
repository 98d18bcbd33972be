// Package notebook turns a tagged .ipynb document into an analyzable block
// graph.
//
// Code cells are routed by their metadata tags: a block tag opens a named
// block, prev tags on the same cell declare its parents, imports and
// functions cells accumulate into a prelude that every block carries, a
// pipeline-parameters cell declares the parameter mapping and skip cells are
// dropped. An untagged cell continues whatever the previous tagged cell
// started. Notebook directives (% magics and ! shell lines) are commented
// out on ingestion so the stored source stays parseable.
package notebook
