// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deptofdefense/netstorage/pkg/appdata"
	"github.com/deptofdefense/netstorage/pkg/fs"
	"github.com/deptofdefense/netstorage/pkg/log"
	"github.com/deptofdefense/netstorage/pkg/storage"
	"github.com/deptofdefense/netstorage/pkg/template"
)

const (
	NetstorageVersion = "1.0.0"
)

const (
	flagConfig = "config"
	//
	flagAppName     = "app-name"
	flagLocalRoot   = "local-root"
	flagRoamingRoot = "roaming-root"
	//
	flagCollision = "collision"
	flagText      = "text"
	//
	flagTemplate   = "template"
	flagMaxEntries = "max-entries"
	//
	flagLogPath = "log"
	flagLogPerm = "log-perm"
	//
	flagAWSPartition          = "aws-partition"
	flagAWSProfile            = "aws-profile"
	flagAWSDefaultRegion      = "aws-default-region"
	flagAWSRegion             = "aws-region"
	flagAWSAccessKeyID        = "aws-access-key-id"
	flagAWSSecretAccessKey    = "aws-secret-access-key"
	flagAWSSessionToken       = "aws-session-token"
	flagAWSInsecureSkipVerify = "aws-insecure-skip-verify"
	flagAWSS3Endpoint         = "aws-s3-endpoint"
	flagAWSS3UsePathStyle     = "aws-s3-use-path-style"
	flagAWSRetryMaxAttempts   = "aws-retry-max-attempts"
)

const (
	// environment variables are prefixed, for example NETSTORAGE_LOCAL_ROOT
	envPrefix = "netstorage"
)

// AWS flags also read the standard unprefixed variables, for example AWS_REGION.
var awsFlags = []string{
	flagAWSPartition,
	flagAWSProfile,
	flagAWSDefaultRegion,
	flagAWSRegion,
	flagAWSAccessKeyID,
	flagAWSSecretAccessKey,
	flagAWSSessionToken,
	flagAWSInsecureSkipVerify,
	flagAWSS3Endpoint,
	flagAWSS3UsePathStyle,
	flagAWSRetryMaxAttempts,
}

func initStorageFlags(flag *pflag.FlagSet) {
	flag.StringP(flagConfig, "c", "", "path to a config file (json, toml, or yaml) with values for flags")
	flag.String(flagAppName, "netstorage", "application name used for the default storage folders")
	flag.String(flagLocalRoot, "", "path to the local storage root folder, either a local path or s3://bucket/prefix.  Defaults to the local application data folder.")
	flag.String(flagRoamingRoot, "", "path to the roaming storage root folder, either a local path or s3://bucket/prefix.  Defaults to the roaming application data folder.")
	flag.Int(flagMaxEntries, -1, "maximum folder entries returned from S3")
	flag.StringP(flagLogPath, "l", "-", "path to the log output.  Defaults to stderr.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	initAWSFlags(flag)
}

func initCollisionFlag(flag *pflag.FlagSet, names []string, defaultValue string) {
	flag.String(flagCollision, defaultValue, "behavior when the target already exists.  One of: "+strings.Join(names, ","))
}

func initAWSFlags(flag *pflag.FlagSet) {
	flag.String(flagAWSPartition, "", "AWS Partition")
	flag.String(flagAWSProfile, "", "AWS Profile")
	flag.String(flagAWSDefaultRegion, "", "AWS Default Region")
	flag.String(flagAWSRegion, "", "AWS Region (overrides default region)")
	flag.String(flagAWSAccessKeyID, "", "AWS Access Key ID")
	flag.String(flagAWSSecretAccessKey, "", "AWS Secret Access Key")
	flag.String(flagAWSSessionToken, "", "AWS Session Token")
	flag.Bool(flagAWSInsecureSkipVerify, false, "Skip verification of AWS TLS certificate")
	flag.String(flagAWSS3Endpoint, "", "AWS S3 Endpoint URL")
	flag.Bool(flagAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing)")
	flag.Int(flagAWSRetryMaxAttempts, 3, "maximum number of attempts for each S3 request")
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	for _, name := range awsFlags {
		envName := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if err := v.BindEnv(name, strings.ToUpper(envPrefix)+"_"+envName, envName); err != nil {
			return v, fmt.Errorf("error binding environment variable %q: %w", envName, err)
		}
	}
	if configPath := v.GetString(flagConfig); len(configPath) > 0 {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return v, fmt.Errorf("error reading config file %q: %w", configPath, err)
		}
	}
	return v, nil
}

// newAWSConfig returns the AWS config for the S3 client shared by every bucket the command touches.
func newAWSConfig(v *viper.Viper) aws.Config {
	accessKeyID := v.GetString(flagAWSAccessKeyID)
	secretAccessKey := v.GetString(flagAWSSecretAccessKey)
	sessionToken := v.GetString(flagAWSSessionToken)

	region := v.GetString(flagAWSRegion)
	if len(region) == 0 {
		if defaultRegion := v.GetString(flagAWSDefaultRegion); len(defaultRegion) > 0 {
			region = defaultRegion
		}
	}

	config := aws.Config{
		RetryMaxAttempts: v.GetInt(flagAWSRetryMaxAttempts),
		Region:           region,
	}

	partition := v.GetString(flagAWSPartition)
	if len(partition) == 0 {
		partition = "aws"
	}

	if e := v.GetString(flagAWSS3Endpoint); len(e) > 0 {
		config.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(func(service string, region string, options ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				endpoint := aws.Endpoint{
					PartitionID:   partition,
					URL:           e,
					SigningRegion: region,
				}
				return endpoint, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
	}

	if len(accessKeyID) > 0 && len(secretAccessKey) > 0 {
		config.Credentials = credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			sessionToken)
	}

	insecureSkipVerify := v.GetBool(flagAWSInsecureSkipVerify)
	if insecureSkipVerify {
		config.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	return config
}

func initS3Client(v *viper.Viper) *s3.Client {
	usePathStyle := v.GetBool(flagAWSS3UsePathStyle)
	return s3.NewFromConfig(newAWSConfig(v), func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
}

func checkConfig(v *viper.Viper) error {
	localRoot := v.GetString(flagLocalRoot)
	roamingRoot := v.GetString(flagRoamingRoot)
	if len(localRoot) == 0 || len(roamingRoot) == 0 {
		appName := v.GetString(flagAppName)
		if len(appName) == 0 {
			return fmt.Errorf("app name is required when local root or roaming root is missing")
		}
		if !fs.CheckName(appName) {
			return fmt.Errorf("invalid app name %q", appName)
		}
	}
	if len(localRoot) > 0 && len(roamingRoot) > 0 && storage.Overlaps(localRoot, roamingRoot) {
		return fmt.Errorf("local root %q and roaming root %q must not be the same folder or contain each other", localRoot, roamingRoot)
	}
	if maxEntries := v.GetInt(flagMaxEntries); maxEntries < -1 || maxEntries == 0 {
		return fmt.Errorf("invalid max entries %d, must be -1 or greater than 0", maxEntries)
	}
	if retryMaxAttempts := v.GetInt(flagAWSRetryMaxAttempts); retryMaxAttempts < 1 {
		return fmt.Errorf("invalid AWS retry max attempts %d, must be greater than 0", retryMaxAttempts)
	}
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	return nil
}

func newTraceID() string {
	traceID, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return traceID.String()
}

// initLogger returns the logger and a function that closes the log file.
func initLogger(path string, perm string) (*log.SimpleLogger, func() error, error) {

	if path == "-" {
		return log.NewSimpleLogger(os.Stderr), func() error { return nil }, nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return log.NewSimpleLogger(f), f.Close, nil
}

func initRoots(v *viper.Viper) (string, string, error) {
	localRoot := v.GetString(flagLocalRoot)
	roamingRoot := v.GetString(flagRoamingRoot)
	if len(localRoot) > 0 && len(roamingRoot) > 0 {
		return localRoot, roamingRoot, nil
	}
	defaultLocalRoot, defaultRoamingRoot, err := appdata.Dirs(v.GetString(flagAppName))
	if err != nil {
		return "", "", fmt.Errorf("error finding application data folders: %w", err)
	}
	if len(localRoot) == 0 {
		localRoot = defaultLocalRoot
	}
	if len(roamingRoot) == 0 {
		roamingRoot = defaultRoamingRoot
	}
	return localRoot, roamingRoot, nil
}

// initFileSystem creates an S3 client only if a root or one of the paths is in S3.
func initFileSystem(ctx context.Context, v *viper.Viper, paths ...string) (*storage.FileSystem, error) {
	localRoot, roamingRoot, err := initRoots(v)
	if err != nil {
		return nil, err
	}
	options := storage.Options{
		LocalRoot:   localRoot,
		RoamingRoot: roamingRoot,
		Fs:          afero.NewOsFs(),
		MaxEntries:  v.GetInt(flagMaxEntries),
	}
	for _, p := range append([]string{localRoot, roamingRoot}, paths...) {
		if storage.IsS3Path(p) {
			options.S3Client = initS3Client(v)
			break
		}
	}
	return storage.NewFileSystem(ctx, options)
}

// storageFunc runs a command against the file system and returns the fields to log on success.
type storageFunc func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error)

func newStorageCommand(use string, short string, positionalArgs cobra.PositionalArgs, fn storageFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   use,
		DisableFlagsInUseLine: true,
		Short:                 short,
		Args:                  positionalArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx := cmd.Context()

			v, err := initViper(cmd)
			if err != nil {
				return fmt.Errorf("error initializing viper: %w", err)
			}

			if errConfig := checkConfig(v); errConfig != nil {
				return errConfig
			}

			logger, closeLogger, err := initLogger(v.GetString(flagLogPath), v.GetString(flagLogPerm))
			if err != nil {
				return fmt.Errorf("error initializing logger: %w", err)
			}
			defer func() {
				_ = closeLogger()
			}()

			traceID := newTraceID()
			start := time.Now()

			sfs, err := initFileSystem(ctx, v, args...)
			if err != nil {
				_ = logger.Log("Error initializing file system", map[string]interface{}{
					"netstorage_trace_id": traceID,
					"error":               err,
				})
				return fmt.Errorf("error initializing file system: %w", err)
			}

			fields, err := fn(ctx, cmd, v, sfs, args)
			if err != nil {
				_ = logger.Log("Error running command", map[string]interface{}{
					"netstorage_trace_id": traceID,
					"command":             cmd.Name(),
					"args":                args,
					"error":               err,
				})
				return err
			}

			if fields == nil {
				fields = map[string]interface{}{}
			}
			fields["netstorage_trace_id"] = traceID
			fields["command"] = cmd.Name()
			fields["duration"] = time.Since(start).String()
			_ = logger.Log("Command completed", fields)
			return nil
		},
	}
	initStorageFlags(cmd.Flags())
	return cmd
}

func nameCollisionOption(v *viper.Viper) (fs.NameCollisionOption, error) {
	option, err := fs.ParseNameCollisionOption(v.GetString(flagCollision))
	if err != nil {
		return option, fmt.Errorf("invalid collision option: %w", err)
	}
	return option, nil
}

func creationCollisionOption(v *viper.Viper) (fs.CreationCollisionOption, error) {
	option, err := fs.ParseCreationCollisionOption(v.GetString(flagCollision))
	if err != nil {
		return option, fmt.Errorf("invalid collision option: %w", err)
	}
	return option, nil
}

// readInput returns the text flag if set, otherwise all of the command's input.
func readInput(cmd *cobra.Command, v *viper.Viper) ([]byte, error) {
	if cmd.Flags().Changed(flagText) || len(v.GetString(flagText)) > 0 {
		return []byte(v.GetString(flagText)), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return data, nil
}

// createFile creates or opens the file at the path using the creation collision option.
func createFile(ctx context.Context, v *viper.Viper, sfs *storage.FileSystem, p string) (fs.File, error) {
	option, err := creationCollisionOption(v)
	if err != nil {
		return nil, err
	}
	dir, name, err := storage.SplitPath(sfs.ResolvePath(p))
	if err != nil {
		return nil, err
	}
	folder, err := sfs.GetFolderFromPath(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("error getting folder %q: %w", dir, err)
	}
	return folder.CreateFile(ctx, name, option)
}

func printf(cmd *cobra.Command, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}

func newRootCommand() *cobra.Command {

	rootCommand := &cobra.Command{
		Use:                   `netstorage [flags]`,
		DisableFlagsInUseLine: true,
		Short:                 "netstorage manages files in local and roaming application storage.",
		Long: `netstorage manages files in local and roaming application storage.

Paths are either local paths or S3 paths in the format s3://bucket/key.
Relative paths are relative to the local storage root folder.
Paths starting with "local:" or "roaming:" are relative to the matching root folder.`,
	}

	rootsCommand := newStorageCommand(
		`roots [flags]`,
		"show the local and roaming storage root folders",
		cobra.NoArgs,
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			printf(cmd, "local\t%s\nroaming\t%s\n", sfs.LocalStorage().FullPath(), sfs.RoamingStorage().FullPath())
			return nil, nil
		},
	)

	readCommand := newStorageCommand(
		`read [flags] PATH`,
		"write the contents of a file to stdout",
		cobra.ExactArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			f, err := sfs.GetFileFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			s, err := f.Open(ctx, fs.Read)
			if err != nil {
				return nil, fmt.Errorf("error opening file %q: %w", f.FullPath(), err)
			}
			n, err := io.Copy(cmd.OutOrStdout(), s)
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("error reading file %q: %w", f.FullPath(), err)
			}
			if err := s.Close(); err != nil {
				return nil, fmt.Errorf("error closing file %q: %w", f.FullPath(), err)
			}
			return map[string]interface{}{"path": f.FullPath(), "bytes": n}, nil
		},
	)

	writeCommand := newStorageCommand(
		`write [flags] PATH`,
		"write stdin or text to a file, creating the file if needed",
		cobra.ExactArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			data, err := readInput(cmd, v)
			if err != nil {
				return nil, err
			}
			f, err := createFile(ctx, v, sfs, args[0])
			if err != nil {
				return nil, err
			}
			if err := f.WriteAllBytes(ctx, data); err != nil {
				return nil, fmt.Errorf("error writing file %q: %w", f.FullPath(), err)
			}
			printf(cmd, "%s\n", f.FullPath())
			return map[string]interface{}{"path": f.FullPath(), "bytes": len(data)}, nil
		},
	)
	initCollisionFlag(writeCommand.Flags(), fs.CreationCollisionOptionNames, fs.CreateReplaceExisting.String())
	writeCommand.Flags().StringP(flagText, "t", "", "text to write instead of stdin")

	writeLinesCommand := newStorageCommand(
		`write-lines [flags] PATH [LINE...]`,
		"write lines to a file, creating the file if needed",
		cobra.MinimumNArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			f, err := createFile(ctx, v, sfs, args[0])
			if err != nil {
				return nil, err
			}
			if err := f.WriteAllLines(ctx, args[1:]); err != nil {
				return nil, fmt.Errorf("error writing file %q: %w", f.FullPath(), err)
			}
			printf(cmd, "%s\n", f.FullPath())
			return map[string]interface{}{"path": f.FullPath(), "lines": len(args) - 1}, nil
		},
	)
	initCollisionFlag(writeLinesCommand.Flags(), fs.CreationCollisionOptionNames, fs.CreateReplaceExisting.String())

	appendCommand := newStorageCommand(
		`append [flags] PATH`,
		"append stdin or text to an existing file",
		cobra.ExactArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			data, err := readInput(cmd, v)
			if err != nil {
				return nil, err
			}
			f, err := sfs.GetFileFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			s, err := f.Open(ctx, fs.ReadWrite)
			if err != nil {
				return nil, fmt.Errorf("error opening file %q: %w", f.FullPath(), err)
			}
			if _, err := s.Seek(0, io.SeekEnd); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("error seeking to end of file %q: %w", f.FullPath(), err)
			}
			if _, err := s.Write(data); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("error appending to file %q: %w", f.FullPath(), err)
			}
			if err := s.Close(); err != nil {
				return nil, fmt.Errorf("error closing file %q: %w", f.FullPath(), err)
			}
			return map[string]interface{}{"path": f.FullPath(), "bytes": len(data)}, nil
		},
	)
	appendCommand.Flags().StringP(flagText, "t", "", "text to append instead of stdin")

	createCommand := newStorageCommand(
		`create [flags] FOLDER NAME`,
		"create an empty file in a folder",
		cobra.ExactArgs(2),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			option, err := creationCollisionOption(v)
			if err != nil {
				return nil, err
			}
			folder, err := sfs.GetFolderFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			f, err := folder.CreateFile(ctx, args[1], option)
			if err != nil {
				return nil, err
			}
			printf(cmd, "%s\n", f.FullPath())
			return map[string]interface{}{"path": f.FullPath(), "collision": option.String()}, nil
		},
	)
	initCollisionFlag(createCommand.Flags(), fs.CreationCollisionOptionNames, fs.CreateFailIfExists.String())

	mkdirCommand := newStorageCommand(
		`mkdir [flags] FOLDER NAME`,
		"create a folder in a folder",
		cobra.ExactArgs(2),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			option, err := creationCollisionOption(v)
			if err != nil {
				return nil, err
			}
			folder, err := sfs.GetFolderFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			created, err := folder.CreateFolder(ctx, args[1], option)
			if err != nil {
				return nil, err
			}
			printf(cmd, "%s\n", created.FullPath())
			return map[string]interface{}{"path": created.FullPath(), "collision": option.String()}, nil
		},
	)
	initCollisionFlag(mkdirCommand.Flags(), fs.CreationCollisionOptionNames, fs.CreateFailIfExists.String())

	renameCommand := newStorageCommand(
		`rename [flags] PATH NEWNAME`,
		"rename a file within its folder",
		cobra.ExactArgs(2),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			option, err := nameCollisionOption(v)
			if err != nil {
				return nil, err
			}
			f, err := sfs.GetFileFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			source := f.FullPath()
			if err := f.Rename(ctx, args[1], option); err != nil {
				return nil, err
			}
			printf(cmd, "%s\n", f.FullPath())
			return map[string]interface{}{"source": source, "target": f.FullPath(), "collision": option.String()}, nil
		},
	)
	initCollisionFlag(renameCommand.Flags(), fs.NameCollisionOptionNames, fs.DefaultRenameOption.String())

	moveCommand := newStorageCommand(
		`move [flags] PATH NEWPATH`,
		"move a file to a new path",
		cobra.ExactArgs(2),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			option, err := nameCollisionOption(v)
			if err != nil {
				return nil, err
			}
			f, err := sfs.GetFileFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			source := f.FullPath()
			if err := f.Move(ctx, sfs.ResolvePath(args[1]), option); err != nil {
				return nil, err
			}
			printf(cmd, "%s\n", f.FullPath())
			return map[string]interface{}{"source": source, "target": f.FullPath(), "collision": option.String()}, nil
		},
	)
	initCollisionFlag(moveCommand.Flags(), fs.NameCollisionOptionNames, fs.DefaultMoveOption.String())

	deleteCommand := newStorageCommand(
		`delete [flags] PATH`,
		"delete a file",
		cobra.ExactArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			f, err := sfs.GetFileFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			if err := f.Delete(ctx); err != nil {
				return nil, err
			}
			return map[string]interface{}{"path": f.FullPath()}, nil
		},
	)

	rmdirCommand := newStorageCommand(
		`rmdir [flags] PATH`,
		"delete a folder and everything in it",
		cobra.ExactArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			folder, err := sfs.GetFolderFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			if err := folder.Delete(ctx); err != nil {
				return nil, err
			}
			return map[string]interface{}{"path": folder.FullPath()}, nil
		},
	)

	lsCommand := newStorageCommand(
		`ls [flags] [FOLDER]`,
		"list the folders and files in a folder.  Defaults to the local storage root folder.",
		cobra.MaximumNArgs(1),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			folder := sfs.LocalStorage()
			if len(args) > 0 {
				f, err := sfs.GetFolderFromPath(ctx, sfs.ResolvePath(args[0]))
				if err != nil {
					return nil, err
				}
				folder = f
			}
			var t template.Template
			if templatePath := v.GetString(flagTemplate); len(templatePath) > 0 {
				parsed, err := template.ParseFile(afero.NewOsFs(), "listing", templatePath)
				if err != nil {
					return nil, fmt.Errorf("error parsing listing template: %w", err)
				}
				t = parsed
			} else {
				parsed, err := template.Parse("listing", template.DefaultListing)
				if err != nil {
					return nil, err
				}
				t = parsed
			}
			listing := template.Listing{
				Path:    folder.FullPath(),
				Folders: []template.Entry{},
				Files:   []template.Entry{},
				Time:    time.Now(),
			}
			folders, err := folder.GetFolders(ctx)
			if err != nil {
				return nil, fmt.Errorf("error listing folders in %q: %w", folder.FullPath(), err)
			}
			for _, f := range folders {
				listing.Folders = append(listing.Folders, template.Entry{Name: f.Name(), Type: fs.FolderExists.String(), Path: f.FullPath()})
			}
			files, err := folder.GetFiles(ctx)
			if err != nil {
				return nil, fmt.Errorf("error listing files in %q: %w", folder.FullPath(), err)
			}
			for _, f := range files {
				listing.Files = append(listing.Files, template.Entry{Name: f.Name(), Type: fs.FileExists.String(), Path: f.FullPath()})
			}
			if err := t.Execute(cmd.OutOrStdout(), listing); err != nil {
				return nil, fmt.Errorf("error executing listing template: %w", err)
			}
			return map[string]interface{}{"path": folder.FullPath(), "folders": len(folders), "files": len(files)}, nil
		},
	)
	lsCommand.Flags().String(flagTemplate, "", "path to a text template for the listing")

	existsCommand := newStorageCommand(
		`exists [flags] FOLDER NAME`,
		"show whether a file or folder with the name exists in a folder",
		cobra.ExactArgs(2),
		func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, sfs *storage.FileSystem, args []string) (map[string]interface{}, error) {
			folder, err := sfs.GetFolderFromPath(ctx, sfs.ResolvePath(args[0]))
			if err != nil {
				return nil, err
			}
			result, err := folder.CheckExists(ctx, args[1])
			if err != nil {
				return nil, err
			}
			printf(cmd, "%s\n", result)
			return map[string]interface{}{"path": folder.FullPath(), "name": args[1], "result": result.String()}, nil
		},
	)

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printf(cmd, "%s\n", NetstorageVersion)
			return nil
		},
	}

	rootCommand.AddCommand(
		rootsCommand,
		readCommand,
		writeCommand,
		writeLinesCommand,
		appendCommand,
		createCommand,
		mkdirCommand,
		renameCommand,
		moveCommand,
		deleteCommand,
		rmdirCommand,
		lsCommand,
		existsCommand,
		versionCommand,
	)

	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "netstorage: "+err.Error())
		_, _ = fmt.Fprintln(os.Stderr, "Try netstorage --help for more information.")
		os.Exit(1)
	}
}
