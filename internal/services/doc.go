// Package services orchestrates a manifest update run.
//
// UpdateService reads every manifest of a package version directory, applies
// the new release to each document, reconciles the installer entries against
// the new installer URLs, renders the documents in schema field order and
// writes them only after every step succeeded and the run was approved.
package services
