// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transfer to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "from", h.NS.Lookup(ntx.From), "to", h.NS.Lookup(ntx.To), "amount", ntx.Amount)

	dbTx, err := h.State.Transfer(ntx.From, ntx.To, ntx.Amount)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}{
		Status: "transaction added to mempool",
		ID:     dbTx.ID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, dbTx := range mempool {
		trans[i] = h.toTx(dbTx)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Blocks returns all the blocks and their details.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveBlocks()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByNumber returns the block at the specified height.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.retrieveBlock(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// TxProof returns the merkle proof that a transaction is part of a block.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.retrieveBlock(r)
	if err != nil {
		return err
	}

	txID := web.Param(r, "txid")

	var found *database.Tx
	for i := range blk.Trans {
		if blk.Trans[i].ID == txID {
			found = &blk.Trans[i]
			break
		}
	}
	if found == nil {
		return errs.NewTrusted(fmt.Errorf("tx[%s] not in block[%d]", txID, blk.Header.Number), http.StatusNotFound)
	}

	tree, err := blk.MerkleTree()
	if err != nil {
		return err
	}

	path, order, err := tree.Proof(*found)
	if err != nil {
		return err
	}

	p := proof{
		Block:      blk.Header.Number,
		TxID:       txID,
		MerkleRoot: blk.Header.MerkleRoot,
		Proof:      merkle.ProofHex(path),
		Order:      order,
	}
	p.Verified = merkle.VerifyProof(txID, p.Proof, order, blk.Header.MerkleRoot) == nil

	return web.Respond(ctx, w, p, http.StatusOK)
}

// Validate walks the chain and reports every integrity violation found.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Valid:  true,
		Blocks: h.State.QueryChainLength(),
	}

	if err := h.State.Audit(); err != nil {
		resp.Valid = false

		var merr *multierror.Error
		switch {
		case errors.As(err, &merr):
			for _, e := range merr.Errors {
				resp.Violations = append(resp.Violations, e.Error())
			}
		default:
			resp.Violations = []string{err.Error()}
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals to start a mining operation.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker != nil {
		h.State.Worker.SignalStartMining()
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func (h Handlers) retrieveBlock(r *http.Request) (database.Block, error) {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return database.Block{}, errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	blk, err := h.State.RetrieveBlock(number)
	if err != nil {
		if errors.Is(err, state.ErrBlockNotFound) {
			return database.Block{}, errs.NewTrusted(err, http.StatusNotFound)
		}
		return database.Block{}, err
	}

	return blk, nil
}
