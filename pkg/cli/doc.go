// Package cli implements the rfcloud command-line interface.
//
// # Overview
//
// rfcloud gives every curator a private workspace on a Kubernetes cluster:
// a persistent claim mounted at /workdir, an interactive login session
// running the curation image, and batch search jobs that share the same
// workspace. The current user is derived from the host the command runs on
// or given explicitly with --user.
//
// # Commands
//
// start - Provision and attach to a login session:
//
//	rfcloud start [--multi] [--no-attach] [--storage-size GiB]
//
// copy-to, copy-from - Move data in and out of the workspace:
//
//	rfcloud copy-to SEED
//	rfcloud copy-from outlist [--dest DIR]
//
// submit - Run a batch job against the workspace:
//
//	rfcloud submit "rfsearch.pl -nodesc" 4 1 [--memory 8Gi]
//
// logs - Print a batch job's output:
//
//	rfcloud logs 1 [--follow]
//
// status - Show the workspace, session and jobs:
//
//	rfcloud status [--format table|json|yaml] [--output FILE]
//
// render - Print a manifest without contacting the cluster:
//
//	rfcloud render BatchJob --command "rfsearch.pl" --cpus 4 --index 1
//
// sweep - Delete completed batch jobs:
//
//	rfcloud sweep [--all-users] [--dry-run] [--interval 10m [--listen-port 9090]]
//
// check - Verify cluster permissions:
//
//	rfcloud check [--sweep]
//
// # Global Flags
//
//	--config       Config file (default: $HOME/.rfcloud.yaml)
//	--kubeconfig   Kubeconfig path (default: KUBECONFIG, ~/.kube/config, in-cluster)
//	--namespace    Namespace for sessions and jobs
//	--user         Act as this user
//	--image        Curation image
//	--timeout      Provisioning deadline
//	--metrics-file Write Prometheus metrics on exit
//	--log-level    Logging verbosity (debug, info, warn, error)
//
// # Environment Variables
//
//	LOG_LEVEL            Logging verbosity
//	RFCLOUD_CONFIG       Config file
//	RFCLOUD_NAMESPACE    Namespace
//	RFCLOUD_USER         User
//	RFCLOUD_IMAGE        Curation image
//	RFCLOUD_METRICS_FILE Metrics file
//
// # Exit Codes
//
//	0  Success
//	1  General error
//	2  Invalid input
//	3  A login session is already running
//	4  Provisioning did not finish in time
//	5  Provisioning failed
//	6  The cluster rejected a submission
package cli
