package apophis

// Version is the Apophis release version.
const Version = "0.3.1"
