// This file is part of GopherCell.
//
// GopherCell is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherCell is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherCell.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/disassembly"
	"github.com/jetsetilly/gophercell/dump"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/loader"
	"github.com/jetsetilly/gophercell/logger"
	"github.com/jetsetilly/gophercell/modalflag"
	"github.com/jetsetilly/gophercell/monitor"
	"github.com/jetsetilly/gophercell/performance"
	"github.com/jetsetilly/gophercell/resources"
	"github.com/jetsetilly/gophercell/script"
	"github.com/jetsetilly/gophercell/statsview"
	"github.com/jetsetilly/gophercell/version"
)

// exit values
const (
	exitOK        = 0
	exitParse     = 10
	exitModeError = 20
)

// maximum number of arguments passed to a thread in registers 3 to 6
const maxThreadArgs = 4

// the environment of a mode. the output is shared by the mode and the monitor
type environment struct {
	fs  afero.Fs
	in  io.Reader
	out io.Writer

	// whether the input is a terminal that the monitor can use
	interactive bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	env := environment{
		fs:          afero.NewOsFs(),
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: monitor.IsTerminal(os.Stdin),
	}

	exitVal := launch(ctx, env, os.Args[1:])
	stop()
	os.Exit(exitVal)
}

// launch parses the top level of the command line and hands control to the
// selected mode. returns the value to use with os.Exit()
func launch(ctx context.Context, env environment, args []string) int {
	md := &modalflag.Modes{Output: env.out}
	md.NewArgs(args)
	md.AdditionalHelp(version.Banner())
	log := md.AddBool("log", false, "echo log to stderr")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run statsview server on %s", statsview.Address))
	md.AddSubModes("RUN", "SCRIPT", "DISASM", "ASM", "PERFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitOK
	case modalflag.ParseError:
		fmt.Fprintf(env.out, "* error: %v\n", err)
		return exitParse
	}

	if *log {
		logger.SetEcho(os.Stderr, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(ctx, env.out)
		} else {
			fmt.Fprintln(env.out, "* statsview not available in this build")
		}
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md, env)
	case "SCRIPT":
		err = runScript(ctx, md, env)
	case "DISASM":
		err = disasm(md, env)
	case "ASM":
		err = asm(md, env)
	case "PERFORMANCE":
		err = perform(ctx, md, env)
	case "VERSION":
		err = showVersion(md, env)
	}

	if err != nil {
		fmt.Fprintf(env.out, "* error in %s mode: %s\n", md, err)
		return exitModeError
	}

	return exitOK
}

// newMachine creates a machine configured by the preferences. the backend
// preference is overridden if the backend string is not empty
func newMachine(backend string) (*machine.Machine, *preferences.Preferences, error) {
	p, err := preferences.NewPreferences()
	if err != nil {
		return nil, nil, err
	}

	cfg := machine.ConfigFromPreferences(p)
	if backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}

	m, err := machine.NewMachine(cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

// the dump directory preference is relative to the resources path
func dumpDirectory(p *preferences.Preferences) (string, error) {
	dir := p.DumpDirectory.String()
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	return resources.JoinPath(dir)
}

func parseThreadArgs(list []string) ([]uint64, error) {
	if len(list) > maxThreadArgs {
		return nil, fmt.Errorf("too many thread arguments (max %d)", maxThreadArgs)
	}
	args := make([]uint64, 0, len(list))
	for _, s := range list {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("thread argument: %w", err)
		}
		args = append(args, v)
	}
	return args, nil
}

func run(ctx context.Context, md *modalflag.Modes, env environment) error {
	md.NewMode()

	backend := md.AddString("backend", "", "execution backend: INTERPRETER, TRANSLATOR (default from preferences)")
	raw := md.AddBool("raw", false, "run each program on a raw core instead of in a thread group")
	threads := md.AddInt("threads", 1, "number of threads in the group when there is one program")
	argList := md.AddList("arg", "thread argument placed in registers 3 to 6")
	hash := md.AddString("hash", "", "expected hash of the program (single program only)")
	timeout := md.AddDuration("timeout", 0, "stop the programs after this duration (zero for no limit)")
	useMonitor := md.AddBool("monitor", true, "start the monitor if the input is a terminal")
	dumpCores := md.AddBool("dump", false, "save a dump of every core when the programs finish")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	files := md.RemainingArgs()
	if len(files) == 0 {
		return fmt.Errorf("SPU program required for %s mode", md)
	}
	if *hash != "" && len(files) > 1 {
		return fmt.Errorf("hash can only be checked for a single program")
	}

	args, err := parseThreadArgs(*argList)
	if err != nil {
		return err
	}

	images := make([]*spu.Image, 0, len(files))
	var name string
	for _, f := range files {
		ld := loader.NewLoader(f)
		ld.Hash = *hash
		if err := ld.Load(env.fs); err != nil {
			return err
		}
		if name == "" {
			name = ld.ShortName()
		}
		images = append(images, ld.Image)
	}

	m, prefs, err := newMachine(*backend)
	if err != nil {
		return err
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	// the run context is cancelled by the monitor's quit command
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := m.Start(runCtx); err != nil {
		return err
	}

	if *useMonitor && env.interactive {
		mon, err := monitor.NewMonitor(m, env.in, env.out)
		if err != nil {
			return err
		}
		mon.Fs = env.fs
		mon.Compression = dump.Compression(prefs.Compression.String())
		if mon.DumpDirectory, err = dumpDirectory(prefs); err != nil {
			return err
		}

		go func() {
			quit, err := mon.Run(runCtx)
			if err != nil {
				logger.Log(logger.Allow, "monitor", err)
			}
			if quit {
				cancel()
			}
		}()
	}

	if *raw {
		err = runRaw(runCtx, m, env.out, images, args)
	} else {
		n := *threads
		if len(images) > 1 {
			n = len(images)
		}
		err = runGroup(runCtx, m, env.out, name, n, images, args)
	}

	if serr := m.Shutdown(); err == nil && serr != nil {
		err = serr
	}

	// every core has stopped after the shutdown
	if err == nil && *dumpCores {
		err = dumpAll(context.Background(), m, env, prefs)
	}

	return err
}

// runGroup runs the images in a thread group. if there is only one image it
// is used by every thread
func runGroup(ctx context.Context, m *machine.Machine, out io.Writer, name string, n int, images []*spu.Image, args []uint64) error {
	g, err := m.NewGroup(name, n)
	if err != nil {
		return err
	}

	for i := range n {
		img := images[0]
		if len(images) > 1 {
			img = images[i]
		}
		if err := g.Initialize(i, img, args...); err != nil {
			return err
		}
	}

	if err := g.Start(); err != nil {
		return err
	}

	cause, status, err := g.Join(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(out, "group %s: interrupted\n", g)
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "group %s: %s (status %d)\n", g, cause, status)
	for _, th := range g.Threads() {
		if v, ok := th.ExitStatus(); ok {
			fmt.Fprintf(out, "  %s: exit %d\n", th.Core, v)
		} else {
			fmt.Fprintf(out, "  %s: %s\n", th.Core, th.Core.Status())
		}
	}

	return nil
}

// runRaw runs each image on a raw core of its own. values written to the
// outbound mailboxes are printed as they arrive
func runRaw(ctx context.Context, m *machine.Machine, out io.Writer, images []*spu.Image, args []uint64) error {
	var crit sync.Mutex
	printf := func(format string, a ...any) {
		crit.Lock()
		defer crit.Unlock()
		fmt.Fprintf(out, format, a...)
	}

	cores := make([]*spu.Core, 0, len(images))
	for _, img := range images {
		c, err := m.NewRawCore()
		if err != nil {
			return err
		}
		c.Load(img)
		for a, v := range args {
			c.GPR[3+a].SetU64(0, v)
		}
		cores = append(cores, c)
	}

	drainCtx, stopDrain := context.WithCancel(ctx)
	defer stopDrain()

	var drain errgroup.Group
	for _, c := range cores {
		drain.Go(func() error {
			for {
				v, err := c.ReadOutMbox(drainCtx)
				if err != nil {
					return nil
				}
				printf("%s: mbox %#08x\n", c, v)
			}
		})
		drain.Go(func() error {
			for {
				v, err := c.ReadOutIntrMbox(drainCtx)
				if err != nil {
					return nil
				}
				printf("%s: intr mbox %#08x\n", c, v)
			}
		})
	}

	for _, c := range cores {
		if err := m.StartCore(c); err != nil {
			return err
		}
	}

	var waitErr error
	for _, c := range cores {
		if _, err := m.WaitCore(ctx, c); err != nil {
			waitErr = err
			break // for loop
		}
	}

	stopDrain()
	_ = drain.Wait()

	// values written after the drain stopped
	for _, c := range cores {
		for {
			v, ok := c.TryReadOutMbox()
			if !ok {
				break // for loop
			}
			printf("%s: mbox %#08x\n", c, v)
		}
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			printf("interrupted\n")
			return nil
		}
		return waitErr
	}

	for _, c := range cores {
		printf("%s: %s\n", c, c.Status())
	}

	return nil
}

// dumpAll saves a dump of every core
func dumpAll(ctx context.Context, m *machine.Machine, env environment, prefs *preferences.Preferences) error {
	dir, err := dumpDirectory(prefs)
	if err != nil {
		return err
	}
	compression := dump.Compression(prefs.Compression.String())

	for _, c := range m.Cores() {
		snap, err := c.Snapshot(ctx)
		if err != nil {
			return err
		}
		pth, err := dump.Save(env.fs, dir, snap, compression)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.out, "%s: dump saved to %s\n", c, pth)
	}
	return nil
}

func runScript(ctx context.Context, md *modalflag.Modes, env environment) error {
	md.NewMode()

	backend := md.AddString("backend", "", "execution backend: INTERPRETER, TRANSLATOR (default from preferences)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("script required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	m, prefs, err := newMachine(*backend)
	if err != nil {
		return err
	}

	s, err := script.NewScript(m, env.fs, env.out)
	if err != nil {
		return err
	}
	s.Compression = dump.Compression(prefs.Compression.String())
	if s.DumpDirectory, err = dumpDirectory(prefs); err != nil {
		return err
	}

	err = s.Run(ctx, md.GetArg(0))

	// the machine is started by the script. a script that could not be read
	// never starts it
	if serr := m.Shutdown(); err == nil && serr != nil && !curated.Is(serr, machine.NotStarted) {
		err = serr
	}

	return err
}

func disasm(md *modalflag.Modes, env environment) error {
	md.NewMode()

	bytecode := md.AddBool("bytecode", false, "include bytecode in disassembly")
	origin := md.AddAddress("origin", 0, "address of the first byte of a raw binary")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("SPU program required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	ld := loader.NewLoader(md.GetArg(0))
	if err := ld.Load(env.fs); err != nil {
		return err
	}

	dsm, err := disassembly.NewDisassembly(0)
	if err != nil {
		return err
	}

	attr := disassembly.WriteAttr{ByteCode: *bytecode}
	if ld.IsELF {
		attr.Cursor = ld.Image.Entry
		attr.UseCursor = true
	}

	for _, s := range ld.Image.Segments {
		addr := s.Addr
		if !ld.IsELF {
			addr = uint32(*origin)
		}
		if len(ld.Image.Segments) > 1 {
			fmt.Fprintf(env.out, "; segment %05x (%d bytes)\n", addr, len(s.Data))
		}
		disassembly.Write(env.out, attr, dsm.FromBytes(s.Data, addr))
	}

	return nil
}

func asm(md *modalflag.Modes, env environment) error {
	md.NewMode()

	output := md.AddString("o", "", "output file (default is the source name with the .spu extension)")
	listing := md.AddBool("listing", false, "print the disassembly of the assembled program")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("assembly source required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	src := md.GetArg(0)
	f, err := env.fs.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	prg, err := assembler.Assemble(f)
	if err != nil {
		return err
	}

	dest := *output
	if dest == "" {
		dest = strings.TrimSuffix(src, filepath.Ext(src)) + ".spu"
	}

	if err := afero.WriteFile(env.fs, dest, prg.Code, 0644); err != nil {
		return err
	}

	fmt.Fprintf(env.out, "%s: %d bytes, %d labels (%s)\n", dest, len(prg.Code), len(prg.Labels), loader.Hash(prg.Image()))

	if *listing {
		dsm, err := disassembly.NewDisassembly(0)
		if err != nil {
			return err
		}
		disassembly.Write(env.out, disassembly.WriteAttr{ByteCode: true}, dsm.FromBytes(prg.Code, prg.Origin))
	}

	return nil
}

func perform(ctx context.Context, md *modalflag.Modes, env environment) error {
	md.NewMode()

	backends := md.AddList("backend", "backends to measure (default INTERPRETER,TRANSLATOR)")
	duration := md.AddDuration("duration", 5*time.Second, "duration of the measurement for each backend")
	profile := md.AddString("profile", "NONE", "create profiles: CPU, MEM, TRACE, ALL (comma separated)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("SPU program required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	prof, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	ld := loader.NewLoader(md.GetArg(0))
	if err := ld.Load(env.fs); err != nil {
		return err
	}

	if len(*backends) == 0 {
		*backends = []string{preferences.BackendInterpreter, preferences.BackendTranslator}
	}

	prefs, err := preferences.NewPreferences()
	if err != nil {
		return err
	}

	for _, b := range *backends {
		cfg := machine.ConfigFromPreferences(prefs)
		cfg.Backend = strings.ToLower(b)
		if _, err := performance.Check(ctx, env.out, env.fs, prof, cfg, ld.Image, *duration); err != nil {
			return err
		}
	}

	return nil
}

func showVersion(md *modalflag.Modes, env environment) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	v, r, _ := version.Version()
	fmt.Fprintf(env.out, "%s %s\n", version.ApplicationName, v)
	if *revision {
		fmt.Fprintln(env.out, r)
	}

	// the time is useful when comparing logs from different runs
	logger.Logf(logger.Allow, "version", "%s at %s", version.Banner(), time.Now().Format(time.RFC3339))

	return nil
}
