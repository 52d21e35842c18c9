// Package password hashes and verifies login secrets with slow, salted,
// one-way algorithms.
//
// # Algorithms
//
// [Bcrypt] is the default and stores standard "$2a$"/"$2b$" digests with a
// configurable cost factor. [Argon2] produces PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.Verify] never returns an error: a malformed or foreign digest simply
// fails verification.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other tokenguard package.
//   - Log plaintext passwords or digests.
package password
