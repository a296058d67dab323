// package repositories persists migration run history in SQLite.
//
// Runs use soft deletes and sequence numbers for stable, human-readable
// ordering; sequences are internal and never shown in CLI output.
package repositories
