// Package queue serializes writes against an OrderBook through a single
// worker goroutine, so Place/Cancel/Amend never race against each other
// regardless of how many callers submit concurrently.
package queue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

const queueDepth = 1024

type commandKind int

const (
	cmdPlace commandKind = iota
	cmdCancel
	cmdAmend
)

type command struct {
	kind commandKind

	order        common.Order
	orderID      string
	newPrice     float64
	newLeavesQty uint64

	reply chan commandReply
}

type commandReply struct {
	order common.Order
	fills []book.Fill
	err   error
}

// CommandQueue is a single-writer front for an OrderBook. Every mutation
// (Place, Cancel, Amend) is serialized through one background worker.
// Read-only book queries (BestBid, Top, Depth, ...) go directly against
// Book() and take no lock: they see a consistent book once the submitting
// calls have returned, but calling them while commands are still in
// flight races with the worker.
type CommandQueue struct {
	book *book.OrderBook
	cmds chan command
	t    tomb.Tomb
}

// NewCommandQueue starts the worker that drains commands against ob. The
// queue must be stopped with Stop once the caller is done with it.
func NewCommandQueue(ob *book.OrderBook) *CommandQueue {
	q := &CommandQueue{
		book: ob,
		cmds: make(chan command, queueDepth),
	}
	q.t.Go(q.run)
	return q
}

// Book exposes the underlying OrderBook for read-only queries.
func (q *CommandQueue) Book() *book.OrderBook {
	return q.book
}

func (q *CommandQueue) run() error {
	log.Info().Msg("command queue: worker starting")
	for {
		select {
		case <-q.t.Dying():
			return nil
		case cmd := <-q.cmds:
			q.dispatch(cmd)
		}
	}
}

func (q *CommandQueue) dispatch(cmd command) {
	var reply commandReply
	switch cmd.kind {
	case cmdPlace:
		reply.order, reply.fills, reply.err = q.book.Place(cmd.order)
	case cmdCancel:
		reply.order, reply.err = q.book.Cancel(cmd.orderID)
	case cmdAmend:
		reply.order, reply.fills, reply.err = q.book.Amend(cmd.orderID, cmd.newPrice, cmd.newLeavesQty)
	}
	cmd.reply <- reply
}

// Place enqueues o and blocks until the worker has matched and (maybe)
// rested it.
func (q *CommandQueue) Place(ctx context.Context, o common.Order) (common.Order, []book.Fill, error) {
	return q.submit(ctx, command{kind: cmdPlace, order: o, reply: make(chan commandReply, 1)})
}

// Cancel enqueues a cancellation for orderID and blocks until applied.
func (q *CommandQueue) Cancel(ctx context.Context, orderID string) (common.Order, error) {
	order, _, err := q.submit(ctx, command{kind: cmdCancel, orderID: orderID, reply: make(chan commandReply, 1)})
	return order, err
}

// Amend enqueues an amend for orderID and blocks until applied.
func (q *CommandQueue) Amend(ctx context.Context, orderID string, newPrice float64, newLeavesQty uint64) (common.Order, []book.Fill, error) {
	return q.submit(ctx, command{
		kind:         cmdAmend,
		orderID:      orderID,
		newPrice:     newPrice,
		newLeavesQty: newLeavesQty,
		reply:        make(chan commandReply, 1),
	})
}

func (q *CommandQueue) submit(ctx context.Context, cmd command) (common.Order, []book.Fill, error) {
	if err := ctx.Err(); err != nil {
		return common.Order{}, nil, err
	}

	select {
	case q.cmds <- cmd:
	case <-q.t.Dying():
		return common.Order{}, nil, fmt.Errorf("command queue: stopped")
	case <-ctx.Done():
		return common.Order{}, nil, ctx.Err()
	}

	select {
	case reply := <-cmd.reply:
		return reply.order, reply.fills, reply.err
	case <-ctx.Done():
		return common.Order{}, nil, ctx.Err()
	}
}

// Stop signals the worker to exit and waits for it to finish.
func (q *CommandQueue) Stop() error {
	q.t.Kill(nil)
	return q.t.Wait()
}
