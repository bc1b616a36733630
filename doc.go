// Package bucketsync synchronizes local directories with remote object
// storage.
//
// The RemoteStorage facade plans and executes push, pull, and delete
// transactions against one bucket of a storage backend. Planning scans one
// side and classifies every candidate against the other: new, modified, up
// to date, excluded by a filter, or colliding. Execution transfers exactly
// the classified differences, aborting up front when a collision or an
// unforced overwrite would occur. MinIO and Amazon S3 backends ship in the
// driver subpackages; any other backend can plug in through the
// synctypes.ObjectStore interface.
//
// Layered JSON/YAML configuration with environment indirection lives in
// the config subpackage. The fetch subpackage covers plain HTTP downloads
// and tar member lookup with the same overwrite and progress semantics the
// sync transfers use.
package bucketsync
