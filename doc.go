// Package dotnetmetadata reads the ECMA-335 metadata of .NET assemblies.
//
// The library parses the physical metadata of managed PE images and
// exposes it as a lazily-resolved object graph. No part of the format is
// decoded ahead of need: table rows are views over the input buffer and
// entities materialize on first resolution.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	dotnetmetadata/      Root package with file-level convenience loaders
//	├── peimage/         PE image access and the CLR runtime header
//	├── metadata/        Metadata root, #~ table stream and heap decoding
//	├── model/           Lazily-resolved entity graph over the metadata
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Load an assembly and walk its types:
//
//	mod, err := dotnetmetadata.LoadFile("App.dll")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	types, err := mod.Types()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range types {
//	    name, _ := t.FullName()
//	    fmt.Println(name)
//	}
//
// Callers that already mapped the image, or that extracted the metadata
// section themselves, can drop down to peimage.Image or
// metadata.DecodeRoot and build the graph with model.Load or
// model.LoadMetadata.
//
// # Errors
//
// All failures are *errors.Error values carrying the processing phase
// and an error kind (out of bounds, malformed heap, invalid coded index,
// missing stream, not a managed assembly, unsupported version, invalid
// row). Match them with errors.Is.
package dotnetmetadata
