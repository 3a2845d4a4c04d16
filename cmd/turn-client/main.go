package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/cydev/turn"
)

const version = "0.1"

var log = logrus.New()

func normalize(address string) string {
	if len(address) == 0 {
		address = "0.0.0.0"
	}
	if !strings.Contains(address, ":") {
		address = fmt.Sprintf("%s:%d", address, turn.DefaultPort)
	}
	return address
}

func newClient(c *cli.Context) (*turn.Client, error) {
	return turn.NewClient(turn.ClientOptions{
		Server:   normalize(c.GlobalString("server")),
		Deadline: c.GlobalDuration("deadline"),
		Logger:   log,
		Software: fmt.Sprintf("cydev/turn %s", version),
		Lifetime: c.Duration("lifetime"),
	})
}

func discover(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()
	reflexive, err := client.Bind()
	if err != nil {
		return err
	}
	fmt.Println(reflexive)
	return nil
}

func allocate(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Allocate(turn.ProtocolUDP, nil)
	if err != nil {
		return err
	}
	if res.Challenge != nil {
		username := c.String("username")
		if username == "" {
			return cli.NewExitError(
				fmt.Sprintf("server requires authentication in realm %q, supply -u and -p",
					res.Challenge.Realm,
				), 1)
		}
		creds := res.Challenge.Credentials(username, c.String("password"))
		if res, err = client.Allocate(turn.ProtocolUDP, &creds); err != nil {
			return err
		}
	}
	if !res.Granted() {
		return cli.NewExitError(
			fmt.Sprintf("allocate rejected: %d %s", res.ErrorCode, res.Reason), 1,
		)
	}
	alloc := res.Allocation
	fmt.Println("relayed:", alloc.Relayed.String())
	if !alloc.Reflexive.IsZero() {
		fmt.Println("reflexive:", alloc.Reflexive.String())
	}
	fmt.Println("lifetime:", alloc.Lifetime)

	if peer := c.String("peer"); peer != "" {
		addr, err := turn.ResolveTransportAddr("udp", normalize(peer))
		if err != nil {
			return err
		}
		perm, err := client.CreatePermission(*addr)
		if err != nil {
			return err
		}
		if !perm.Granted() {
			return cli.NewExitError(
				fmt.Sprintf("permission rejected: %d %s", perm.ErrorCode, perm.Reason), 1,
			)
		}
		fmt.Println("permission granted for", addr)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "turn-client"
	app.Usage = "command line client for STUN and TURN"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server, s",
			Value: "127.0.0.1",
			Usage: "server address",
		},
		cli.DurationFlag{
			Name:  "deadline, d",
			Value: 5 * time.Second,
			Usage: "round trip deadline",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "discover",
			Usage:  "perform binding round trip and print reflexive address",
			Action: discover,
		},
		{
			Name:   "allocate",
			Usage:  "allocate relayed address, authenticating if challenged",
			Action: allocate,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "username, u",
					Usage: "long-term credential username",
				},
				cli.StringFlag{
					Name:  "password, p",
					Usage: "long-term credential password",
				},
				cli.DurationFlag{
					Name:  "lifetime, l",
					Usage: "requested allocation lifetime",
				},
				cli.StringFlag{
					Name:  "peer",
					Usage: "peer address to authorize after allocation",
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
