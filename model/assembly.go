package model

import "fmt"

// Version is a four-part assembly version.
type Version struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// String formats the version as "major.minor.build.revision".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// readVersion reads four consecutive u16 columns starting at col.
func (e *entity) readVersion(col int) (Version, error) {
	var parts [4]uint16
	for i := range parts {
		v, err := e.row.Uint(col + i)
		if err != nil {
			return Version{}, err
		}
		parts[i] = uint16(v)
	}
	return Version{Major: parts[0], Minor: parts[1], Build: parts[2], Revision: parts[3]}, nil
}

// Assembly is the module's assembly manifest row.
type Assembly struct {
	entity
}

// HashAlgorithm returns the manifest hash algorithm identifier.
func (a *Assembly) HashAlgorithm() (uint32, error) {
	return a.row.Uint(0)
}

// Version returns the assembly version.
func (a *Assembly) Version() (Version, error) {
	return a.readVersion(1)
}

// Flags returns the assembly's attributes.
func (a *Assembly) Flags() (AssemblyFlags, error) {
	v, err := a.row.Uint(5)
	return AssemblyFlags(v), err
}

// PublicKey returns the full public key blob, empty for unsigned
// assemblies. The slice aliases the heap.
func (a *Assembly) PublicKey() ([]byte, error) {
	return a.blob(6)
}

// Name returns the assembly's simple name.
func (a *Assembly) Name() (string, error) {
	return a.str(7)
}

// Culture returns the assembly's culture, empty for neutral assemblies.
func (a *Assembly) Culture() (string, error) {
	return a.str(8)
}

// AssemblyRef is a reference to another assembly.
type AssemblyRef struct {
	entity
}

// Version returns the referenced assembly's version.
func (r *AssemblyRef) Version() (Version, error) {
	return r.readVersion(0)
}

// Flags returns the reference's attributes.
func (r *AssemblyRef) Flags() (AssemblyFlags, error) {
	v, err := r.row.Uint(4)
	return AssemblyFlags(v), err
}

// PublicKeyOrToken returns the referenced assembly's public key or its
// 8-byte token, depending on the PublicKey flag. The slice aliases the
// heap.
func (r *AssemblyRef) PublicKeyOrToken() ([]byte, error) {
	return r.blob(5)
}

// Name returns the referenced assembly's simple name.
func (r *AssemblyRef) Name() (string, error) {
	return r.str(6)
}

// Culture returns the referenced assembly's culture.
func (r *AssemblyRef) Culture() (string, error) {
	return r.str(7)
}

// HashValue returns the reference's hash blob. The slice aliases the heap.
func (r *AssemblyRef) HashValue() ([]byte, error) {
	return r.blob(8)
}

// ModuleRef is a reference to an external module, typically the target of
// a P/Invoke import.
type ModuleRef struct {
	entity
}

// Name returns the referenced module's name.
func (r *ModuleRef) Name() (string, error) {
	return r.str(0)
}
