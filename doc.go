// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package deltasync implements the core of an rsync-style delta-encoding
// engine: a block signature builder, a byte-granular delta builder, and a
// patch applier, sharing a dual-hash (rolling + strong) fingerprint scheme.
package deltasync
