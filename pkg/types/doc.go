// Package types defines the Datastore interface, configuration, the raw Row
// result tuple, and standard errors for the record mapper.
package types
