// Package config manages application-wide settings and directory structures.
// It follows XDG specifications for locating the image cache on disk.
package config
