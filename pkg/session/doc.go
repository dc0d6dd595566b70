/*
Package session derives the client's authentication state from a bearer
credential and keeps a tiny hint of it in durable storage.

# States

A Machine is always in one of five states:

  - Anonymous: no credential and no persisted hint
  - User, UserPreauth: a regular account, with or without preauthorization
  - Student, StudentPreauth: a student account, with or without preauthorization

When a credential is present the state is a pure function of the account
kind and the preauthorization claim (see Derive). The credential is decoded
without verifying its signature; the server remains the authority and the
state only drives local decisions.

# Hydration

On every successful SetCredential the machine persists a Hint (is student,
is preauthorized). At process start, Hydrate reads it back so the client can
optimistically assume an authenticated shell before the refresh collaborator
has produced a live credential. If that collaborator later calls
SetCredential(ctx, nil), the state collapses to Anonymous and the hint is
erased.

	m := session.New(kv, session.WithLogger(logger))
	m.Hydrate(ctx)

	if err := m.SetCredential(ctx, &token); err != nil {
		// errors.Is(err, session.ErrMalformedCredential): force a logout
	}

# Concurrent assignments

Assignments run one at a time. A caller that fetches a credential over the
network reads Generation first and applies the result with SetCredentialIf,
so a logout that happened in the meantime is not undone.
*/
package session
