/*
Package ledger is the sole authority over wallet balances and transaction
entries.

Every balance change in the system is expressed as an Operation: an ordered
batch of mutations, each pairing a balance delta with the immutable entry that
records it. Apply commits the whole batch in one database transaction or not at
all; readers never observe an intermediate state.

Concurrency is handled at the row level rather than in process, so the
guarantees hold across multiple server instances. Apply locks every affected
wallet row with SELECT ... FOR UPDATE in ascending wallet-id order, which
serializes concurrent operations on the same wallet (no stale balance checks)
and prevents deadlock when one operation touches two wallets.
*/
package ledger
