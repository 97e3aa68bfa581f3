// Package model builds a lazily-resolved object graph over the physical
// metadata of a managed module.
//
// Load opens a PE image through peimage.Image; LoadMetadata starts from
// an already decoded metadata root. Either way the result is a Module,
// from which entities are resolved on first access:
//
//	mod, err := model.Load(img)
//	types, err := mod.Types()
//	for _, t := range types {
//	    name, _ := t.FullName()
//	    fmt.Println(name)
//	}
//
// # Resolution Cache
//
// Every entity is cached under its (table, row) key for the life of the
// Module, so repeated resolution of the same key yields the same pointer
// and reference cycles (a type extending itself through malformed input,
// mutually nested scopes) terminate with a cache hit: the entity shell
// enters the cache before any of its columns can be read. The cache is
// never evicted. Module is safe for concurrent use.
//
// # Ownership Ranges
//
// Fields, methods and parameters are not linked to their owners by
// explicit columns on the child rows. The owner row stores the first
// child index, and the range extends to the next owner's first child (or
// the table end for the last owner). The package materializes these list
// start arrays once per module and answers both directions from them:
// TypeDef.Fields walks the range, Field.DeclaringType binary-searches it.
package model
