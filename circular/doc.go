// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides small helpers for sizing power-of-2 rolling
// buffers, the kind an antidiagonal cloud search keeps for its last few
// rows instead of retaining the whole dynamic-programming matrix.
package circular
