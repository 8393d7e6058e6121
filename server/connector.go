// Copyright 2024-2026 The Sluice Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

// connector is the transmission strategy: how queued packets reach the
// socket. Selected once per transmission at setup time and kept on the
// transmission, there is no global registry.
//
// service performs one nonblocking drain attempt. close releases
// connector resources and is safe to call once per transmission on any
// exit path.
type connector interface {
	open(tx *transmission) error
	service(tx *transmission)
	close(tx *transmission)
}

var (
	sendConn connector = sendConnector{}
	netConn  connector = netConnector{}
)

// selectConnector picks the strategy for a transmission: the sendfile
// connector for plain file-backed bodies, the generic one for
// materialized content.
func selectConnector(tx *transmission) connector {
	if tx.filename != "" {
		return sendConn
	}
	return netConn
}

// netConnector is the generic fallback: every packet is materialized in
// memory and leaves through plain vector writes. Same queue machinery,
// no file extents.
type netConnector struct{}

func (netConnector) open(tx *transmission) error { return nil }

func (netConnector) close(tx *transmission) {}

func (netConnector) service(tx *transmission) {
	q := tx.q

	if tx.finalized {
		return
	}
	if tx.noBody {
		q.discardData()
	}
	if !tx.checkLimit() {
		return
	}
	tx.writeBlocked = false

	if q.vecLen == 0 {
		q.buildVector(tx)
	}

	if q.ioCount > 0 {
		written, res, err := tx.conn.transport.SendVec(nil, 0, q.ioCount, q.vec[:q.vecLen])
		if !tx.handleSendResult(written, res, err) {
			return
		}
	}

	if p := q.first(); p != nil && p.kind == packetEnd {
		tx.finalize()
		q.pop()
	}
}
