// Command cachectl is a thin command-line client for a running cacheserver,
// wrapping the client package's Set/Get/Del/Reset/SpaceUsed calls.
//
// Usage:
//
//	cachectl -host 127.0.0.1 -port 65413 set Item1 314159
//	cachectl -host 127.0.0.1 -port 65413 get Item1
//	cachectl -host 127.0.0.1 -port 65413 del Item1
//	cachectl -host 127.0.0.1 -port 65413 space
//	cachectl -host 127.0.0.1 -port 65413 reset
package main

import (
	"flag"
	"fmt"
	"os"

	"netcache/client"
)

func main() {
	host := flag.String("host", "127.0.0.1", "cache daemon host")
	port := flag.String("port", "65413", "cache daemon port")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := client.New(*host, *port)
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "set":
		err = runSet(c, rest)
	case "get":
		err = runGet(c, rest)
	case "del":
		err = runDel(c, rest)
	case "space":
		err = runSpace(c)
	case "reset":
		err = c.Reset()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "cachectl:", err)
		os.Exit(1)
	}
}

func runSet(c *client.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: cachectl set KEY VALUE")
	}
	return c.Set(args[0], args[1])
}

func runGet(c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cachectl get KEY")
	}
	value, ok, err := c.Get(args[0])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("(miss)")
		return nil
	}
	fmt.Println(value)
	return nil
}

func runDel(c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cachectl del KEY")
	}
	existed, err := c.Del(args[0])
	if err != nil {
		return err
	}
	fmt.Println(existed)
	return nil
}

func runSpace(c *client.Client) error {
	used, err := c.SpaceUsed()
	if err != nil {
		return err
	}
	fmt.Println(used)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cachectl [-host H] [-port P] set|get|del|space|reset ...")
}
