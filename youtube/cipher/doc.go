/*
Package cipher decodes the obfuscated stream URL parameters of YouTube.

Formats served to web clients carry a signatureCipher instead of a direct URL
and most URLs carry an "n" parameter that must be transformed or the media
host throttles the transfer. Both transforms live in the player's JavaScript.

The package downloads player.js once per URL, evaluates it in an otto VM and
keeps that VM for a few minutes. Every call runs on a copy of the cached VM,
so concurrent requests never share interpreter state.

Usage:

	playerJSURL, err := cipher.FetchPlayerJS(ctx, httpClient, "https://www.youtube.com/watch?v="+id)
	if err != nil {
		return err
	}
	sig, err := cipher.Decipher(ctx, httpClient, playerJSURL, s)

All failures are *Error values carrying one of the ErrCode constants. They
match errs.ErrCipherFailed under errors.Is.
*/
package cipher
