package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/praoslabs/walletd/wtypes"
	"github.com/urfave/cli"
)

// printJSON renders resp as indented JSON on stdout.
func printJSON(resp interface{}) {
	b, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(b))
}

// registrationResp is the JSON shape of a registration certificate.
type registrationResp struct {
	PoolID       string   `json:"pool_id"`
	Owners       []string `json:"owners"`
	Margin       string   `json:"margin"`
	Cost         uint64   `json:"cost"`
	Pledge       uint64   `json:"pledge"`
	MetadataURL  string   `json:"metadata_url,omitempty"`
	MetadataHash string   `json:"metadata_hash,omitempty"`
}

func newRegistrationResp(
	cert wtypes.PoolRegistrationCertificate) *registrationResp {

	resp := &registrationResp{
		PoolID: cert.PoolID.String(),
		Margin: cert.Margin.String(),
		Cost:   uint64(cert.Cost),
		Pledge: uint64(cert.Pledge),
	}
	for _, owner := range cert.Owners {
		resp.Owners = append(resp.Owners, owner.String())
	}
	cert.Metadata.WhenSome(func(ref wtypes.PoolMetadataRef) {
		resp.MetadataURL = ref.URL
		resp.MetadataHash = ref.Hash.String()
	})

	return resp
}

var listPoolsCommand = cli.Command{
	Name:     "listpools",
	Category: "Pools",
	Usage:    "List the ID of every registered pool.",
	Description: `
	Lists the pool ID of every registration certificate on record, most
	recently published first. A pool that re-registered appears once per
	certificate.`,
	Action: listPools,
}

func listPools(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	pools, err := db.ListRegisteredPools(context.Background())
	if err != nil {
		return err
	}

	resp := make([]string, len(pools))
	for i, pool := range pools {
		resp[i] = pool.String()
	}
	printJSON(resp)

	return nil
}

var poolInfoCommand = cli.Command{
	Name:      "poolinfo",
	Category:  "Pools",
	Usage:     "Display a pool's registration and life-cycle state.",
	ArgsUsage: "pool_id",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Dump the raw life-cycle record instead.",
		},
	},
	Action: poolInfo,
}

func poolInfo(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "poolinfo")
	}
	pool, err := wtypes.DecodePoolID(ctx.Args().First())
	if err != nil {
		return err
	}

	db, cleanUp := openDB(ctx)
	defer cleanUp()

	status, err := db.ReadPoolLifeCycleStatus(context.Background(), pool)
	if err != nil {
		return err
	}

	if ctx.Bool("debug") {
		fmt.Print(spew.Sdump(status))
		return nil
	}

	resp := struct {
		Registered      bool              `json:"registered"`
		Retiring        bool              `json:"retiring"`
		RetirementEpoch uint64            `json:"retirement_epoch,omitempty"`
		Registration    *registrationResp `json:"registration,omitempty"`
	}{
		Registered: status.IsRegistered(),
		Retiring:   status.IsRetiring(),
	}
	status.Registration.WhenSome(
		func(cert wtypes.PoolRegistrationCertificate) {
			resp.Registration = newRegistrationResp(cert)
		},
	)
	status.Retirement.WhenSome(
		func(cert wtypes.PoolRetirementCertificate) {
			resp.RetirementEpoch = uint64(cert.RetirementEpoch)
		},
	)
	printJSON(resp)

	return nil
}

var productionCommand = cli.Command{
	Name:     "production",
	Category: "Pools",
	Usage:    "Show block production, per pool.",
	Description: `
	Without flags, prints the total number of blocks ever produced by each
	pool. With --epoch, prints the blocks produced within that epoch. With
	--last, prints the most recently produced blocks.`,
	Flags: []cli.Flag{
		cli.Uint64Flag{
			Name:  "epoch",
			Usage: "Show the blocks produced in this epoch.",
		},
		cli.IntFlag{
			Name:  "last",
			Usage: "Show the last n produced blocks.",
		},
	},
	Action: production,
}

func production(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	ctxb := context.Background()

	switch {
	case ctx.IsSet("last"):
		headers, err := db.ReadPoolProductionCursor(
			ctxb, ctx.Int("last"),
		)
		if err != nil {
			return err
		}

		resp := make([]blockResp, len(headers))
		for i, header := range headers {
			resp[i] = newBlockResp(header)
		}
		printJSON(resp)

	case ctx.IsSet("epoch"):
		production, err := db.ReadPoolProduction(
			ctxb, wtypes.Epoch(ctx.Uint64("epoch")),
		)
		if err != nil {
			return err
		}

		resp := make(map[string][]blockResp, len(production))
		for pool, headers := range production {
			blocks := make([]blockResp, len(headers))
			for i, header := range headers {
				blocks[i] = newBlockResp(header)
			}
			resp[pool.String()] = blocks
		}
		printJSON(resp)

	default:
		total, err := db.ReadTotalProduction(ctxb)
		if err != nil {
			return err
		}

		resp := make(map[string]uint64, len(total))
		for pool, blocks := range total {
			resp[pool.String()] = blocks
		}
		printJSON(resp)
	}

	return nil
}

type blockResp struct {
	Slot       uint64 `json:"slot"`
	Hash       string `json:"hash"`
	ParentHash string `json:"parent_hash"`
	Height     uint64 `json:"height"`
}

func newBlockResp(header wtypes.BlockHeader) blockResp {
	return blockResp{
		Slot:       uint64(header.Slot),
		Hash:       header.Hash.String(),
		ParentHash: header.ParentHash.String(),
		Height:     header.Height,
	}
}

var stakeCommand = cli.Command{
	Name:     "stake",
	Category: "Pools",
	Usage:    "Show the stake distribution snapshot of an epoch.",
	Flags: []cli.Flag{
		cli.Uint64Flag{
			Name:     "epoch",
			Usage:    "The epoch of the snapshot.",
			Required: true,
		},
	},
	Action: stake,
}

func stake(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	distribution, err := db.ReadStakeDistribution(
		context.Background(), wtypes.Epoch(ctx.Uint64("epoch")),
	)
	if err != nil {
		return err
	}

	resp := make(map[string]uint64, len(distribution))
	for pool, coin := range distribution {
		resp[pool.String()] = uint64(coin)
	}
	printJSON(resp)

	return nil
}

var metadataCommand = cli.Command{
	Name:     "metadata",
	Category: "Metadata",
	Usage:    "List all fetched pool metadata.",
	Action:   metadata,
}

func metadata(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	meta, err := db.ReadPoolMetadata(context.Background())
	if err != nil {
		return err
	}

	type metaResp struct {
		Ticker      string `json:"ticker"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Homepage    string `json:"homepage"`
	}
	resp := make(map[string]metaResp, len(meta))
	for hash, m := range meta {
		resp[hash.String()] = metaResp{
			Ticker:      m.Ticker,
			Name:        m.Name,
			Description: m.Description.UnwrapOr(""),
			Homepage:    m.Homepage,
		}
	}
	printJSON(resp)

	return nil
}

var unfetchedCommand = cli.Command{
	Name:     "unfetched",
	Category: "Metadata",
	Usage:    "List metadata references that still need fetching.",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "limit",
			Value: 100,
			Usage: "The maximum number of references to return.",
		},
	},
	Action: unfetched,
}

func unfetched(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	refs, err := db.UnfetchedPoolMetadataRefs(
		context.Background(), ctx.Int("limit"),
	)
	if err != nil {
		return err
	}

	type refResp struct {
		URL  string `json:"url"`
		Hash string `json:"hash"`
	}
	resp := make([]refResp, len(refs))
	for i, ref := range refs {
		resp[i] = refResp{URL: ref.URL, Hash: ref.Hash.String()}
	}
	printJSON(resp)

	return nil
}

var seedCommand = cli.Command{
	Name:     "seed",
	Category: "Maintenance",
	Usage:    "Print the database's system seed, creating it if needed.",
	Action:   seed,
}

func seed(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	seed, err := db.ReadSystemSeed(context.Background())
	if err != nil {
		return err
	}

	printJSON(struct {
		Seed string `json:"seed"`
	}{
		Seed: fmt.Sprintf("%x", seed),
	})

	return nil
}

var rollbackCommand = cli.Command{
	Name:     "rollback",
	Category: "Maintenance",
	Usage:    "Roll the database back to a slot.",
	Description: `
	Unwinds the chain-derived records to the given slot: block production
	and certificates recorded after it are deleted, as are stake
	distributions of later epochs. Fetched metadata is kept.`,
	Flags: []cli.Flag{
		cli.Uint64Flag{
			Name:     "slot",
			Usage:    "The slot to roll back to.",
			Required: true,
		},
	},
	Action: rollback,
}

func rollback(ctx *cli.Context) error {
	db, cleanUp := openDB(ctx)
	defer cleanUp()

	return db.RollbackTo(context.Background(), wtypes.Point{
		Slot: wtypes.Slot(ctx.Uint64("slot")),
	})
}

var wipeCommand = cli.Command{
	Name:     "wipe",
	Category: "Maintenance",
	Usage:    "Delete every record family except the system seed.",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "force",
			Usage: "Skip the confirmation prompt.",
		},
	},
	Action: wipe,
}

func wipe(ctx *cli.Context) error {
	if !ctx.Bool("force") {
		fmt.Print("This deletes all indexed pool data. " +
			"Type 'wipe' to confirm: ")

		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if answer != "wipe" {
			return fmt.Errorf("aborted")
		}
	}

	db, cleanUp := openDB(ctx)
	defer cleanUp()

	return db.Wipe(context.Background())
}
