package distconfig

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/log"
)

// SysOps is the OS-level collaborator behind descriptor materialization.
// Every operation is create-if-missing: converging on state that already
// exists is a no-op, never an error. Transient OS failures propagate
// unmodified; this layer does not retry.
type SysOps interface {
	AddGroup(name string) error
	AddUser(name, primary string, secondary []string) error
	MkDir(path string, owner, group string, perms os.FileMode) error
	InstallPackages(pkgs []string) error
}

// ExecSysOps implements SysOps with the usual system utilities.
type ExecSysOps struct{}

func NewExecSysOps() *ExecSysOps {
	return &ExecSysOps{}
}

func (o *ExecSysOps) AddGroup(name string) error {
	if exec.Command("getent", "group", name).Run() == nil {
		return nil // already exists
	}
	return run("groupadd", name)
}

func (o *ExecSysOps) AddUser(name, primary string, secondary []string) error {
	if exec.Command("id", "-u", name).Run() == nil {
		return nil
	}
	args := []string{"-m"}
	if primary != "" {
		args = append(args, "-g", primary)
	}
	if len(secondary) > 0 {
		args = append(args, "-G", strings.Join(secondary, ","))
	}
	args = append(args, name)
	return run("useradd", args...)
}

func (o *ExecSysOps) MkDir(path string, owner, group string, perms os.FileMode) error {
	if err := os.MkdirAll(path, perms); err != nil {
		return err
	}
	if err := os.Chmod(path, perms); err != nil {
		return err
	}
	return run("chown", fmt.Sprintf("%s:%s", owner, group), path)
}

func (o *ExecSysOps) InstallPackages(pkgs []string) error {
	if err := run("apt-get", "update"); err != nil {
		return err
	}
	args := append([]string{"install", "-y"}, pkgs...)
	return run("apt-get", args...)
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return errdefs.NewCommandError(name+" "+strings.Join(args, " "), string(out), err)
	}
	opsLog := log.WithComponent("distconfig")
	opsLog.Debug().
		Str("cmd", name).
		Strs("args", args).
		Msg("System command succeeded")
	return nil
}
