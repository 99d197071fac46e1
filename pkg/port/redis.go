package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/nobletooth/ringlist/pkg/circlist"
	"github.com/nobletooth/ringlist/pkg/registry"
	"github.com/nobletooth/ringlist/pkg/scan"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var (
	address   = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")
	idleClose = flag.Duration("idle_close", 0, "Close client connections idle for this long; 0 keeps them open.")
)

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string // Upper case.
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool          // Closes the connection if true.
	err             *string       // Error to return if set.
	writeInt        *int          // Writes an integer value if set.
	writeBulk       *string       // Writes a bulk string if set.
	writeArray      []redisOutput // Writes an array of the given outputs if non-nil.
	writeString     string        // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(items []redisOutput) redisOutput {
	if items == nil {
		items = make([]redisOutput, 0)
	}
	return redisOutput{writeArray: items}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

// writeListError tags list errors with their kind so clients can tell them apart.
func writeListError(err error) redisOutput {
	var prefix string
	switch circlist.ErrorKind(err) {
	case "invalid_position":
		prefix = "INVALIDPOS "
	case "empty_list":
		prefix = "EMPTY "
	case "out_of_memory":
		prefix = "OOM "
	case "invalid_state":
		prefix = "INVALIDSTATE "
	case "corrupt_ring":
		prefix = "CORRUPT "
	default:
		return writeRedisError(err)
	}
	msg := prefix + err.Error()
	return redisOutput{err: &msg}
}

// writeTo writes the output on a redcon connection.
func (o redisOutput) writeTo(conn redcon.Conn) {
	switch {
	case o.err != nil:
		conn.WriteError(*o.err)
	case o.writeInt != nil:
		conn.WriteInt(*o.writeInt)
	case o.writeBulk != nil:
		conn.WriteBulkString(*o.writeBulk)
	case o.writeArray != nil:
		conn.WriteArray(len(o.writeArray))
		for _, item := range o.writeArray {
			item.writeTo(conn)
		}
	default:
		conn.WriteString(o.writeString)
	}
}

type redisHandler struct {
	lists *registry.Registry
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(lists *registry.Registry) (*redisHandler, error) {
	if lists == nil {
		return nil, errors.New("expected a non-nil registry")
	}
	return &redisHandler{lists: lists}, nil
}

// arityError reports a command called with the wrong number of arguments.
func arityError(cmd redisCommand) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(cmd.command)))
}

// parseInts parses every argument as a decimal integer.
func parseInts(args ...string) ([]int, error) {
	ints := make([]int, len(args))
	for i, arg := range args {
		parsed, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.New("value is not an integer or out of range")
		}
		ints[i] = parsed
	}
	return ints, nil
}

// onList runs `fn` on the list called `name` and writes its output, or the error it failed with.
func (rh *redisHandler) onList(name string, fn func(list *circlist.List) (redisOutput, error)) redisOutput {
	var output redisOutput
	err := rh.lists.Do(name, func(list *circlist.List) error {
		var err error
		output, err = fn(list)
		return err
	})
	if err != nil {
		return writeListError(err)
	}
	return output
}

// onListWithInts is onList for commands of the form `CMD name int...`.
func (rh *redisHandler) onListWithInts(cmd redisCommand, ints int,
	fn func(list *circlist.List, args []int) (redisOutput, error)) redisOutput {
	if len(cmd.args) != 1+ints {
		return arityError(cmd)
	}
	args, err := parseInts(cmd.args[1:]...)
	if err != nil {
		return writeRedisError(err)
	}
	return rh.onList(cmd.args[0], func(list *circlist.List) (redisOutput, error) {
		return fn(list, args)
	})
}

func okOrError(err error) (redisOutput, error) {
	return writeRedisString(RedisOk), err
}

func intOrError(i int, err error) (redisOutput, error) {
	return writeRedisInt(i), err
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	switch cmd.command {
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "LNAMES": // LNAMES [pattern]
		if len(cmd.args) > 1 {
			return arityError(cmd)
		}
		pattern := "*"
		if len(cmd.args) == 1 {
			pattern = cmd.args[0]
		}
		names, err := scan.MatchGlob(pattern, slices.Values(rh.lists.Names()))
		if err != nil {
			return writeRedisError(err)
		}
		items := make([]redisOutput, 0)
		for name := range names {
			items = append(items, writeRedisBulk(name))
		}
		return writeRedisArray(items)
	case "LCREATE":
		if len(cmd.args) != 1 {
			return arityError(cmd)
		}
		if err := rh.lists.Create(cmd.args[0]); err != nil {
			return writeListError(err)
		}
		return writeRedisString(RedisOk)
	case "LDESTROY":
		if len(cmd.args) != 1 {
			return arityError(cmd)
		}
		if err := rh.lists.Destroy(cmd.args[0]); err != nil {
			return writeListError(err)
		}
		return writeRedisString(RedisOk)
	case "LINSERT": // LINSERT name index value
		return rh.onListWithInts(cmd, 2, func(list *circlist.List, args []int) (redisOutput, error) {
			return okOrError(list.InsertAt(args[1] /*value*/, args[0] /*index*/))
		})
	case "LINSERTFIRST":
		return rh.onListWithInts(cmd, 1, func(list *circlist.List, args []int) (redisOutput, error) {
			return okOrError(list.InsertFirst(args[0]))
		})
	case "LINSERTLAST":
		return rh.onListWithInts(cmd, 1, func(list *circlist.List, args []int) (redisOutput, error) {
			return okOrError(list.InsertLast(args[0]))
		})
	case "LDELETE":
		return rh.onListWithInts(cmd, 1, func(list *circlist.List, args []int) (redisOutput, error) {
			return intOrError(list.DeleteAt(args[0]))
		})
	case "LDELETEFIRST":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			return intOrError(list.DeleteFirst())
		})
	case "LDELETELAST":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			return intOrError(list.DeleteLast())
		})
	case "LSEARCH":
		return rh.onListWithInts(cmd, 1, func(list *circlist.List, args []int) (redisOutput, error) {
			return intOrError(list.SearchAt(args[0]))
		})
	case "LSIZE":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			return intOrError(list.Len())
		})
	case "LEMPTY":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			empty, err := list.IsEmpty()
			if empty {
				return writeRedisInt(1), err
			}
			return writeRedisInt(0), err
		})
	case "LSWAPENDS":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			return okOrError(list.SwapEnds())
		})
	case "LCHECK":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			return okOrError(list.Validate())
		})
	case "LRANGE":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			values, err := list.Values()
			if err != nil {
				return redisOutput{}, err
			}
			items := make([]redisOutput, len(values))
			for i, value := range values {
				items[i] = writeRedisInt(value)
			}
			return writeRedisArray(items), nil
		})
	case "LDUMP":
		return rh.onListWithInts(cmd, 0, func(list *circlist.List, _ []int) (redisOutput, error) {
			dump := new(strings.Builder)
			if err := list.Dump(dump); err != nil {
				return redisOutput{}, err
			}
			return writeRedisBulk(dump.String()), nil
		})
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", strings.ToLower(cmd.command)))
	}
}

// newRedisServer wires the handler into a redcon server.
func newRedisServer(rh *redisHandler) *redcon.Server {
	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand.
			command := redisCommand{command: strings.ToUpper(string(cmd.Args[0])), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			output := rh.handle(command)
			output.writeTo(conn)
			if output.closeConnection {
				if err := conn.Close(); err != nil {
					slog.Error("Failed to close connection.", "error", err)
				}
			}
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})
	if *idleClose > 0 {
		redisServer.SetIdleClose(*idleClose)
	}
	return redisServer
}

// serveRedis serves the Redis protocol on `ln` until ctx is cancelled, then destroys every list.
func serveRedis(ctx context.Context, ln net.Listener, lists *registry.Registry) error {
	rh, err := newRedisHandler(lists)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}
	redisServer := newRedisServer(rh)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- redisServer.Serve(ln)
	}()
	slog.Info("Serving Redis protocol.", "address", ln.Addr().String())

	select {
	case <-ctx.Done():
		// Closing the listener stops Serve whether or not it has started accepting yet.
		var lnErr error
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			lnErr = err
		}
		serverErr := <-serverDone
		listsErr := lists.Close()
		if exitErr := errors.Join(lnErr, serverErr, listsErr); exitErr != nil {
			return fmt.Errorf("failed to close ringlist: %w", exitErr)
		}
	case err := <-serverDone:
		if err == nil {
			return errors.New("redis server stopped unexpectedly")
		}
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}

// RunRedisServer starts a Redis protocol server on --address that works on the lists of the given registry.
func RunRedisServer(ctx context.Context, lists *registry.Registry) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}
	ln, err := net.Listen("tcp", *address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *address, err)
	}
	return serveRedis(ctx, ln, lists)
}
