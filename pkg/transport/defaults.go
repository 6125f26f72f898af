package transport

// DefaultLocalSocketPath is the Unix-domain socket path used when no
// explicit path is configured.
const DefaultLocalSocketPath = "/var/run/semadraw.sock"

// DefaultNetworkPort is the TCP port used when no explicit port is
// configured.
const DefaultNetworkPort = 7234

// AcceptBacklog is a pending-connection bound of 16. The daemon does not
// reference it: admission control (internal/daemon) limits clients by its
// MaxClients setting alone.
const AcceptBacklog = 16
