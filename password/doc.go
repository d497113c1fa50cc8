// Package password implements Argon2id password hashing for SignIn and SignUp.
//
// # Output format
//
// Hashes are encoded in PHC string format with unpadded base64 fields:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// [Hasher.NeedsRehash] reports hashes produced with weaker parameters so a
// caller can re-hash after a successful sign-in.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other goIdentity package.
//   - Log plaintext passwords.
package password
